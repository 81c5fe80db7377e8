package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// Store is a blob store for dataset documents. Keys map to "<key>.json".
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Location describes where a key lives, for logging.
	Location(key string) string
}

// LocalStore is a directory-backed implementation of Store.
type LocalStore struct {
	dir string
	mu  sync.RWMutex
}

// NewLocal creates a LocalStore rooted at dir, creating it if needed.
func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Get reads the value stored under key.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.keyPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.Location(key), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Location(key), err)
	}
	return data, nil
}

// Put writes value under key. The file is replaced atomically so a
// concurrent reader or file watcher never sees a partial document.
func (s *LocalStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := renameio.NewPendingFile(s.keyPath(key), renameio.WithPermissions(0644))
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", s.Location(key), err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(value); err != nil {
		return fmt.Errorf("write %s: %w", s.Location(key), err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", s.Location(key), err)
	}
	return nil
}

// Location returns the file path for key.
func (s *LocalStore) Location(key string) string {
	return s.keyPath(key)
}

func (s *LocalStore) keyPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}
