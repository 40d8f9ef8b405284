// Package credstore persists the single session credential. The store holds at
// most one bearer string at a time; absence of the entry is the sole signal of
// "logged out", including across process restarts for the durable backends.
package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/threatlens/console-client/internal/config"

	"github.com/sirupsen/logrus"
)

// ErrNoCredential is returned by Get when no credential is present.
var ErrNoCredential = errors.New("credstore: no credential present")

// Store is the credential cell. Set followed by Get yields the set value until
// the next Set or Clear; Clear followed by Get yields ErrNoCredential. No
// expiry is enforced locally.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// New builds the store selected by configuration.
func New(cfg *config.Config, logger *logrus.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return NewMemory(), nil
	case "file":
		path := cfg.Store.Path
		if path == "" {
			p, err := DefaultPath()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve credential path: %w", err)
			}
			path = p
		}
		logger.WithField("path", path).Debug("Using file credential store")
		return NewFile(path), nil
	case "redis":
		return NewRedis(&cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
