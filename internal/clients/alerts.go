package clients

import (
	"context"

	"github.com/threatlens/console-client/internal/models"
	"github.com/threatlens/console-client/internal/transport"

	"github.com/sirupsen/logrus"
)

// AlertClient reads security alerts
type AlertClient struct {
	api    *transport.Client
	logger *logrus.Logger
}

// NewAlertClient creates a new alert client
func NewAlertClient(api *transport.Client, logger *logrus.Logger) *AlertClient {
	return &AlertClient{api: api, logger: logger}
}

// List fetches the current alerts
func (c *AlertClient) List(ctx context.Context) ([]models.AlertRecord, error) {
	var alerts []models.AlertRecord
	if err := c.api.DoJSON(ctx, "GET", "/api/v1/alerts/", nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}
