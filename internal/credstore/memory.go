package credstore

import (
	"context"
	"sync"

	"github.com/threatlens/console-client/internal/metrics"
)

// Memory holds the credential for the lifetime of the process only, mirroring
// a browser session. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	token   string
	present bool
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.present {
		metrics.RecordStoreOperation("memory", "get", "miss")
		return "", ErrNoCredential
	}
	metrics.RecordStoreOperation("memory", "get", "success")
	return m.token, nil
}

func (m *Memory) Set(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.present = true
	metrics.RecordStoreOperation("memory", "set", "success")
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.present = false
	metrics.RecordStoreOperation("memory", "clear", "success")
	return nil
}
