package models

import "time"

// Alert statuses. The set is closed; the backend rejects anything else.
const (
	AlertStatusOpen          = "open"
	AlertStatusInvestigating = "investigating"
	AlertStatusResolved      = "resolved"
	AlertStatusFalsePositive = "false_positive"
)

// AlertRecord is a triggered security alert as the dashboard renders it.
type AlertRecord struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	AlertType       string     `json:"alert_type"`
	Severity        string     `json:"severity" validate:"omitempty,oneof=critical high medium low"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status" validate:"oneof=open investigating resolved false_positive"`
	ConfidenceScore float64    `json:"confidence_score,omitempty"`
	TriggeredAt     time.Time  `json:"triggered_at"`
	AcknowledgedAt  *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}
