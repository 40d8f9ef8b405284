// Package transport performs all HTTP calls to the ThreatLens backend and
// applies the two interception stages every call goes through: the outbound
// stage attaches the stored credential as a bearer header, the inbound stage
// detects 401 responses, clears the credential store and signals invalidation
// before the rejection reaches the caller.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/threatlens/console-client/internal/config"
	"github.com/threatlens/console-client/internal/credstore"
	"github.com/threatlens/console-client/internal/metrics"
	"github.com/threatlens/console-client/internal/middleware"
	apierrors "github.com/threatlens/console-client/pkg/errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client handles communication with the ThreatLens backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      credstore.Store
	bus        *InvalidationBus
	logger     *logrus.Logger
}

// New creates a new backend client
func New(cfg *config.APIConfig, store credstore.Store, logger *logrus.Logger) *Client {
	// Create HTTP client with timeout
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxConnsPerHost:     10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		store:      store,
		bus:        NewInvalidationBus(),
		logger:     logger,
	}
}

// Invalidations returns the bus carrying session-invalidated events.
func (c *Client) Invalidations() *InvalidationBus {
	return c.bus
}

// Response is the successful result of a backend call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do executes one backend call. The outbound stage runs before the request is
// sent and the inbound stage before the response or error reaches the caller;
// the credential is snapshotted at send time, so a concurrent Clear does not
// affect requests already in flight.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	start := time.Now()

	// Marshal body
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	// Inject tracing headers
	for k, v := range middleware.InjectHeaders(ctx) {
		req.Header.Set(k, v)
	}

	// Outbound stage: attach the stored credential if one is present. A store
	// read failure must not block the request; it just goes out unauthenticated.
	token, err := c.store.Get(ctx)
	switch {
	case err == nil && token != "":
		req.Header.Set("Authorization", "Bearer "+token)
	case err != nil && !errors.Is(err, credstore.ErrNoCredential):
		c.logger.WithError(err).Warn("Credential store read failed, sending request without auth")
	}

	// Execute request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(method, path, 0, time.Since(start))
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).Warn("Backend request failed")
		return nil, apierrors.Transport(err)
	}
	defer resp.Body.Close()

	metrics.RecordAPICall(method, path, resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.Transport(fmt.Errorf("failed to read response: %w", err))
	}

	// Inbound stage: a 401 from any endpoint invalidates the session before
	// the rejection propagates.
	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidate(ctx, method, path)
	}

	if resp.StatusCode >= 400 {
		return nil, apierrors.FromStatus(resp.StatusCode, string(respBody))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// DoJSON executes a call and decodes the response body into out when non-nil.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// invalidate clears the store, then signals, in that order. Requests already
// in flight keep the credential snapshot they were sent with.
func (c *Client) invalidate(ctx context.Context, method, path string) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.WithError(err).Error("Failed to clear credential store after 401")
	}

	metrics.RecordInvalidation()
	c.bus.Notify()

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Warn("Session invalidated by 401 response")
}
