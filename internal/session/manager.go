// Package session owns the authenticated/unauthenticated state machine: it
// orchestrates login, registration, current-user retrieval and logout against
// the transport, and is the only component besides the transport's inbound
// stage that mutates the credential store.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/threatlens/console-client/internal/credstore"
	"github.com/threatlens/console-client/internal/metrics"
	"github.com/threatlens/console-client/internal/models"
	"github.com/threatlens/console-client/internal/transport"
	apierrors "github.com/threatlens/console-client/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Backend auth endpoints.
const (
	loginPath    = "/api/v1/auth/login"
	registerPath = "/api/v1/auth/register"
	mePath       = "/api/v1/auth/me"
	logoutPath   = "/api/v1/auth/logout"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnknown holds until the startup restore check has completed.
	StateUnknown State = iota
	// StateAuthenticated means a credential exists and the principal loaded.
	StateAuthenticated
	// StateUnauthenticated means no credential, or the last one was rejected.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Manager is the single owner of session-state transitions.
type Manager struct {
	api      *transport.Client
	store    credstore.Store
	validate *validator.Validate
	logger   *logrus.Logger

	mu        sync.RWMutex
	state     State
	principal *models.User

	watchMu  sync.Mutex
	watchers map[int]chan State
	nextID   int

	unsubscribe func()
}

// NewManager creates a manager in StateUnknown and subscribes it to the
// transport's invalidation events.
func NewManager(api *transport.Client, store credstore.Store, logger *logrus.Logger) *Manager {
	m := &Manager{
		api:      api,
		store:    store,
		validate: validator.New(),
		logger:   logger,
		state:    StateUnknown,
		watchers: make(map[int]chan State),
	}

	ch, cancel := api.Invalidations().Subscribe()
	m.unsubscribe = cancel
	go m.watchInvalidations(ch)

	return m
}

// Close releases the invalidation subscription.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Manager) watchInvalidations(ch <-chan struct{}) {
	for range ch {
		m.logger.Info("Invalidation signal received, dropping session")
		m.setState(StateUnauthenticated, nil)
	}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Principal returns the cached logged-in identity, if any.
func (m *Manager) Principal() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.principal == nil {
		return models.User{}, false
	}
	return *m.principal, true
}

// Watch registers a listener for state transitions. The returned cancel func
// must be called to release the subscription.
func (m *Manager) Watch() (<-chan State, func()) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan State, 4)
	m.watchers[id] = ch

	cancel := func() {
		m.watchMu.Lock()
		defer m.watchMu.Unlock()
		if _, ok := m.watchers[id]; ok {
			delete(m.watchers, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Restore performs the startup check: a stored credential that still fetches
// the current principal yields StateAuthenticated, anything else yields
// StateUnauthenticated. A missing credential is not an error.
func (m *Manager) Restore(ctx context.Context) error {
	_, err := m.store.Get(ctx)
	if errors.Is(err, credstore.ErrNoCredential) {
		m.setState(StateUnauthenticated, nil)
		return nil
	}
	if err != nil {
		m.setState(StateUnauthenticated, nil)
		return err
	}

	var user models.User
	if err := m.api.DoJSON(ctx, "GET", mePath, nil, &user); err != nil {
		m.setState(StateUnauthenticated, nil)
		return err
	}

	m.logger.WithField("username", user.Username).Info("Session restored")
	m.setState(StateAuthenticated, &user)
	return nil
}

// Login authenticates the user. On success the credential is persisted into
// the store before the state flips to authenticated and before the credential
// is handed back; on failure the state is left untouched.
func (m *Manager) Login(ctx context.Context, req models.LoginRequest) (models.Credential, error) {
	if err := m.validate.Struct(req); err != nil {
		return models.Credential{}, apierrors.New(apierrors.KindValidation, 0, "username and password are required", err)
	}

	var cred models.Credential
	if err := m.api.DoJSON(ctx, "POST", loginPath, req, &cred); err != nil {
		m.logger.WithError(err).WithField("username", req.Username).Warn("Login failed")
		return models.Credential{}, err
	}

	// Persisting the credential is part of the login contract: the store must
	// hold the token before the session declares itself authenticated.
	if err := m.store.Set(ctx, cred.AccessToken); err != nil {
		return models.Credential{}, err
	}

	m.logger.WithFields(logrus.Fields{
		"username":   req.Username,
		"token_type": cred.TokenType,
		"expires_in": cred.ExpiresIn,
	}).Info("User logged in")
	m.logTokenExpiry(cred.AccessToken)

	m.setState(StateAuthenticated, nil)
	return cred, nil
}

// Register creates an account. The returned principal is informational only;
// registration never touches session state (no implicit login).
func (m *Manager) Register(ctx context.Context, req models.RegistrationRequest) (models.User, error) {
	if err := m.validate.Struct(req); err != nil {
		return models.User{}, apierrors.New(apierrors.KindValidation, 0, "username, email and password are required", err)
	}

	var user models.User
	if err := m.api.DoJSON(ctx, "POST", registerPath, req, &user); err != nil {
		return models.User{}, err
	}

	m.logger.WithFields(logrus.Fields{
		"username": user.Username,
		"user_id":  user.ID,
	}).Info("User registered")
	return user, nil
}

// CurrentUser fetches the logged-in identity. A 401 here rides the transport
// invalidation path; the state flip is applied here as well so callers observe
// it as soon as the error returns.
func (m *Manager) CurrentUser(ctx context.Context) (models.User, error) {
	var user models.User
	if err := m.api.DoJSON(ctx, "GET", mePath, nil, &user); err != nil {
		if apierrors.IsAuthentication(err) {
			m.setState(StateUnauthenticated, nil)
		}
		return models.User{}, err
	}

	m.setState(StateAuthenticated, &user)
	return user, nil
}

// Logout notifies the backend on a best-effort basis, then unconditionally
// clears the local credential and flips to unauthenticated. Local invalidation
// never depends on network success, and a repeated logout is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	if _, err := m.store.Get(ctx); err == nil {
		if _, err := m.api.Do(ctx, "POST", logoutPath, nil); err != nil {
			m.logger.WithError(err).Warn("Backend logout failed, clearing local session anyway")
		}
	}

	err := m.store.Clear(ctx)
	m.setState(StateUnauthenticated, nil)
	return err
}

func (m *Manager) setState(state State, principal *models.User) {
	m.mu.Lock()
	changed := m.state != state
	m.state = state
	if state == StateAuthenticated {
		// nil until the principal is loaded; a fresh login drops a stale one
		m.principal = principal
	} else {
		m.principal = nil
	}
	m.mu.Unlock()

	if !changed {
		return
	}

	metrics.RecordSessionTransition(state.String())
	m.logger.WithField("state", state.String()).Debug("Session state changed")

	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for _, ch := range m.watchers {
		select {
		case ch <- state:
		default:
		}
	}
}

// logTokenExpiry peeks at the token's exp claim for operator logs. The token
// is not verified and nothing is enforced from it.
func (m *Manager) logTokenExpiry(token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	m.logger.WithField("expires_at", exp.Format(time.RFC3339)).Debug("Token expiry hint")
}
