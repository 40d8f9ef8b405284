// Package clients provides typed read access to the dashboard's domain
// records. Every call rides the shared transport and therefore inherits both
// interception stages.
package clients

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/threatlens/console-client/internal/models"
	"github.com/threatlens/console-client/internal/transport"

	"github.com/sirupsen/logrus"
)

// ThreatClient reads threat-intelligence records
type ThreatClient struct {
	api    *transport.Client
	logger *logrus.Logger
}

// NewThreatClient creates a new threat client
func NewThreatClient(api *transport.Client, logger *logrus.Logger) *ThreatClient {
	return &ThreatClient{api: api, logger: logger}
}

// List fetches a page of threats
func (c *ThreatClient) List(ctx context.Context, q models.ThreatQuery) ([]models.ThreatRecord, error) {
	params := url.Values{}
	if q.Source != "" {
		params.Set("source", q.Source)
	}
	if q.Severity != "" {
		params.Set("severity", q.Severity)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}

	path := "/api/v1/threats/"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var threats []models.ThreatRecord
	if err := c.api.DoJSON(ctx, "GET", path, nil, &threats); err != nil {
		return nil, err
	}
	return threats, nil
}

// Search runs a free-text threat search
func (c *ThreatClient) Search(ctx context.Context, query string, size int) ([]models.ThreatRecord, error) {
	params := url.Values{}
	params.Set("query", query)
	if size > 0 {
		params.Set("size", strconv.Itoa(size))
	}

	var threats []models.ThreatRecord
	if err := c.api.DoJSON(ctx, "GET", "/api/v1/threats/search?"+params.Encode(), nil, &threats); err != nil {
		return nil, err
	}
	return threats, nil
}

// Get fetches a single threat by id
func (c *ThreatClient) Get(ctx context.Context, id int) (models.ThreatRecord, error) {
	var threat models.ThreatRecord
	if err := c.api.DoJSON(ctx, "GET", fmt.Sprintf("/api/v1/threats/%d", id), nil, &threat); err != nil {
		return models.ThreatRecord{}, err
	}
	return threat, nil
}

// Stats fetches the aggregate counters behind the dashboard tiles
func (c *ThreatClient) Stats(ctx context.Context) (models.ThreatStats, error) {
	var stats models.ThreatStats
	if err := c.api.DoJSON(ctx, "GET", "/api/v1/threats/stats", nil, &stats); err != nil {
		return models.ThreatStats{}, err
	}
	return stats, nil
}
