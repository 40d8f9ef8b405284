package models

import "time"

// Threat severity levels. The set is closed; the backend rejects anything else.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// ThreatRecord is a normalized threat-intelligence item as the dashboard
// visualizes it. The session layer carries it typed and unmodified.
type ThreatRecord struct {
	ID          int     `json:"id"`
	Source      string  `json:"source"`
	ExternalID  string  `json:"external_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ThreatType  string  `json:"threat_type,omitempty"`
	Severity    string  `json:"severity,omitempty" validate:"omitempty,oneof=critical high medium low"`
	CVSSScore   float64 `json:"cvss_score,omitempty"`
	CVSSVector  string  `json:"cvss_vector,omitempty"`

	// Indicators
	IPAddresses []string          `json:"ip_addresses"`
	Domains     []string          `json:"domains"`
	URLs        []string          `json:"urls"`
	FileHashes  map[string]string `json:"file_hashes"` // algorithm name -> hash value

	// Enrichment
	RiskScore         float64 `json:"risk_score,omitempty"`
	ConfidenceScore   float64 `json:"confidence_score,omitempty"`
	PredictedCategory string  `json:"predicted_category,omitempty"`
	Summary           string  `json:"summary,omitempty"`

	Tags       []string `json:"tags"`
	References []string `json:"references"`

	PublishedDate  *time.Time `json:"published_date,omitempty"`
	DiscoveredDate time.Time  `json:"discovered_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`

	IsActive   bool `json:"is_active"`
	IsVerified bool `json:"is_verified"`
}

// ThreatQuery narrows a threat listing.
type ThreatQuery struct {
	Source   string
	Severity string
	Page     int
	Size     int
}

// ThreatStats holds the aggregate counters behind the dashboard tiles.
type ThreatStats struct {
	TotalThreats    int            `json:"total_threats"`
	ActiveThreats   int            `json:"active_threats"`
	VerifiedThreats int            `json:"verified_threats"`
	RecentThreats   int            `json:"recent_threats"` // last 24 hours
	BySeverity      map[string]int `json:"by_severity"`
	ByType          map[string]int `json:"by_type"`
	BySource        map[string]int `json:"by_source"`
}
