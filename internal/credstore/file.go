package credstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/threatlens/console-client/internal/metrics"
)

// credentialFile is the fixed name of the single durable entry.
const credentialFile = "credential"

// File persists the credential as a single 0600 file so the session survives
// process restarts. Absence of the file means logged out.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a store backed by the file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath returns the credential location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "threatlens", credentialFile), nil
}

func (f *File) Get(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		metrics.RecordStoreOperation("file", "get", "miss")
		return "", ErrNoCredential
	}
	if err != nil {
		metrics.RecordStoreOperation("file", "get", "failure")
		return "", err
	}
	metrics.RecordStoreOperation("file", "get", "success")
	return string(data), nil
}

func (f *File) Set(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		metrics.RecordStoreOperation("file", "set", "failure")
		return err
	}
	// Write-then-rename so a crash never leaves a torn credential behind.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		metrics.RecordStoreOperation("file", "set", "failure")
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		metrics.RecordStoreOperation("file", "set", "failure")
		return err
	}
	metrics.RecordStoreOperation("file", "set", "success")
	return nil
}

func (f *File) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		metrics.RecordStoreOperation("file", "clear", "failure")
		return err
	}
	metrics.RecordStoreOperation("file", "clear", "success")
	return nil
}
