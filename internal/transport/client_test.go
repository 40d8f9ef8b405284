package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/threatlens/console-client/internal/config"
	"github.com/threatlens/console-client/internal/credstore"
	apierrors "github.com/threatlens/console-client/pkg/errors"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, credstore.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := credstore.NewMemory()
	client := New(&config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, store, testLogger())
	return client, store
}

func TestDo_AttachesBearerWhenCredentialPresent(t *testing.T) {
	var gotAuth string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "T1"))

	_, err := client.Do(ctx, "GET", "/api/v1/auth/me", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer T1", gotAuth)
}

func TestDo_NoHeaderWhenCredentialAbsent(t *testing.T) {
	var sawHeader bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))

	_, err := client.Do(context.Background(), "GET", "/api/v1/threats/", nil)
	require.NoError(t, err)
	assert.False(t, sawHeader, "request without a credential must carry no authorization header")
}

func TestDo_SetsRequestID(t *testing.T) {
	var gotID string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	}))

	_, err := client.Do(context.Background(), "GET", "/healthz", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, gotID)
}

func TestDo_UnauthorizedClearsStoreAndSignalsOnce(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "stale"))

	events, cancel := client.Invalidations().Subscribe()
	defer cancel()

	_, err := client.Do(ctx, "GET", "/api/v1/auth/me", nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsAuthentication(err), "the rejection must still reach the caller")

	// Store is absent immediately after the call returns
	_, getErr := store.Get(ctx)
	assert.ErrorIs(t, getErr, credstore.ErrNoCredential)

	// Exactly one invalidation event fired
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("expected an invalidation event")
	}
	select {
	case <-events:
		t.Fatal("expected exactly one invalidation event")
	default:
	}
}

func TestDo_UnauthorizedFromAnyEndpoint(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "stale"))

	// The invalidation path does not care which caller issued the request
	_, err := client.Do(ctx, "GET", "/api/v1/threats/stats", nil)
	require.True(t, apierrors.IsAuthentication(err))

	_, getErr := store.Get(ctx)
	assert.ErrorIs(t, getErr, credstore.ErrNoCredential)
}

func TestDo_SubsequentRequestsCarryNoStaleCredential(t *testing.T) {
	var calls atomic.Int32
	var secondAuth string
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		secondAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "stale"))

	_, err := client.Do(ctx, "GET", "/api/v1/auth/me", nil)
	require.Error(t, err)

	_, err = client.Do(ctx, "GET", "/api/v1/threats/", nil)
	require.NoError(t, err)
	assert.Empty(t, secondAuth)
}

func TestDo_ValidationErrorBodyVerbatim(t *testing.T) {
	body := `{"detail":"Severity must be one of: critical, high, medium, low"}`
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(body))
	}))

	_, err := client.Do(context.Background(), "POST", "/api/v1/threats/", map[string]string{"severity": "apocalyptic"})
	require.Error(t, err)
	require.True(t, apierrors.IsValidation(err))

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, body, apiErr.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
}

func TestDo_ServerErrorLeavesStoreAlone(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "T1"))

	_, err := client.Do(ctx, "GET", "/api/v1/threats/", nil)
	require.True(t, apierrors.IsServer(err))

	token, getErr := store.Get(ctx)
	require.NoError(t, getErr)
	assert.Equal(t, "T1", token)
}

func TestDo_TransportErrorLeavesStoreAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	store := credstore.NewMemory()
	client := New(&config.APIConfig{BaseURL: srv.URL, Timeout: time.Second}, store, testLogger())

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "T1"))

	_, err := client.Do(ctx, "GET", "/api/v1/threats/", nil)
	require.True(t, apierrors.IsTransport(err))

	token, getErr := store.Get(ctx)
	require.NoError(t, getErr)
	assert.Equal(t, "T1", token)
}

func TestDoJSON_DecodesBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"T1","token_type":"bearer","expires_in":3600}`))
	}))

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	err := client.DoJSON(context.Background(), "POST", "/api/v1/auth/login", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "T1", out.AccessToken)
	assert.Equal(t, 3600, out.ExpiresIn)
}

func TestInvalidationBus_FanOutAndCancel(t *testing.T) {
	bus := NewInvalidationBus()

	a, cancelA := bus.Subscribe()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	bus.Notify()

	for name, ch := range map[string]<-chan struct{}{"a": a, "b": b} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s missed the event", name)
		}
	}

	// A cancelled subscriber no longer receives and its channel closes
	cancelA()
	bus.Notify()

	_, open := <-a
	assert.False(t, open)

	select {
	case <-b:
	case <-time.After(time.Second):
		t.Fatal("surviving subscriber missed the event")
	}
}

func TestInvalidationBus_NotifyNeverBlocks(t *testing.T) {
	bus := NewInvalidationBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Nobody drains the subscription; repeated notifies must not block
		for i := 0; i < 10; i++ {
			bus.Notify()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full subscriber channel")
	}
}
