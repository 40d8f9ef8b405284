package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/threatlens/console-client/internal/config"
	"github.com/threatlens/console-client/internal/credstore"
	"github.com/threatlens/console-client/internal/models"
	"github.com/threatlens/console-client/internal/session"
	"github.com/threatlens/console-client/internal/transport"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConsole wires a full console app against a fake ThreatLens backend.
func newConsole(t *testing.T) (*fiber.App, *session.Manager) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "admin" || req.Password != "admin" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(models.Credential{AccessToken: "T1", TokenType: "bearer", ExpiresIn: 3600})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/v1/threats/stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ThreatStats{TotalThreats: 3})
	})
	mux.HandleFunc("GET /api/v1/threats/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.ThreatRecord{})
	})
	mux.HandleFunc("GET /api/v1/alerts/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.AlertRecord{})
	})
	mux.HandleFunc("GET /api/v1/analytics/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trend":"flat"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.API = config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}
	cfg.Observability.MetricsPath = "/metrics"

	store := credstore.NewMemory()
	api := transport.New(&cfg.API, store, logger)
	manager := session.NewManager(api, store, logger)
	t.Cleanup(manager.Close)
	require.NoError(t, manager.Restore(context.Background()))

	app := fiber.New()
	Setup(app, cfg, logger, manager, api)
	return app, manager
}

func TestGate_UnauthenticatedGetsUnauthorized(t *testing.T) {
	app, _ := newConsole(t)

	req := httptest.NewRequest("GET", "/dashboard/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGate_BrowserIsSentToLoginSurface(t *testing.T) {
	app, _ := newConsole(t)

	req := httptest.NewRequest("GET", "/dashboard/", nil)
	req.Header.Set("Accept", "text/html")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestGate_AuthenticatedPassesThrough(t *testing.T) {
	app, manager := newConsole(t)

	_, err := manager.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin"})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/dashboard/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "stats")
	assert.Contains(t, body, "analytics")
}

func TestConsole_LoginEndpoint(t *testing.T) {
	app, manager := newConsole(t)

	payload, _ := json.Marshal(models.LoginRequest{Username: "admin", Password: "admin"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cred models.Credential
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cred))
	assert.Equal(t, "T1", cred.AccessToken)
	assert.Equal(t, session.StateAuthenticated, manager.State())
}

func TestConsole_LoginEndpointRejection(t *testing.T) {
	app, manager := newConsole(t)

	payload, _ := json.Marshal(models.LoginRequest{Username: "admin", Password: "nope"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, session.StateUnauthenticated, manager.State())
}

func TestConsole_LogoutClosesTheGate(t *testing.T) {
	app, manager := newConsole(t)

	_, err := manager.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin"})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("POST", "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/dashboard/threats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestConsole_StatusReflectsState(t *testing.T) {
	app, manager := newConsole(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unauthenticated", body["state"])

	_, err = manager.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin"})
	require.NoError(t, err)

	resp, err = app.Test(httptest.NewRequest("GET", "/login", nil))
	require.NoError(t, err)
	body = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "authenticated", body["state"])
}

func TestConsole_Healthz(t *testing.T) {
	app, _ := newConsole(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
