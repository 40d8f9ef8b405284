package clients

import (
	"context"

	"github.com/threatlens/console-client/internal/transport"

	"github.com/sirupsen/logrus"
)

// AnalyticsClient reads dashboard analytics
type AnalyticsClient struct {
	api    *transport.Client
	logger *logrus.Logger
}

// NewAnalyticsClient creates a new analytics client
func NewAnalyticsClient(api *transport.Client, logger *logrus.Logger) *AnalyticsClient {
	return &AnalyticsClient{api: api, logger: logger}
}

// Overview fetches the analytics overview payload. The shape is owned by the
// backend and rendered as-is.
func (c *AnalyticsClient) Overview(ctx context.Context) (map[string]interface{}, error) {
	var overview map[string]interface{}
	if err := c.api.DoJSON(ctx, "GET", "/api/v1/analytics/", nil, &overview); err != nil {
		return nil, err
	}
	return overview, nil
}
