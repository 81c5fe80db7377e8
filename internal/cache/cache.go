// Package cache keeps the last successfully loaded dataset on disk so the
// server can start when its primary source is unavailable.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"church-map/internal/log"
	"church-map/internal/model"
)

// Entry is a cached copy of a dataset with metadata.
type Entry struct {
	States    []model.State  `json:"states"`
	Revision  model.Revision `json:"revision"`
	Version   string         `json:"version"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Cache provides disk-based caching of datasets, one file per source.
type Cache struct {
	dir    string
	ttl    time.Duration
	mu     sync.RWMutex
	logger zerolog.Logger
}

// New creates a new disk-based cache. A zero ttl never expires entries.
func New(cacheDir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	return &Cache{
		dir:    cacheDir,
		ttl:    ttl,
		logger: log.WithComponent("cache"),
	}, nil
}

// Get returns the cached entry for a source if it exists and isn't expired.
func (c *Cache) Get(source string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path := c.filePath(source)
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("discarding undecodable cache entry")
		return Entry{}, false
	}

	if c.ttl > 0 && time.Since(entry.FetchedAt) > c.ttl {
		return Entry{}, false
	}
	return entry, true
}

// Set stores a dataset in the cache.
func (c *Cache) Set(source string, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	// Replaced atomically; readers see the old entry or the new one.
	return renameio.WriteFile(c.filePath(source), data, 0644)
}

// Invalidate removes a source's cached entry.
func (c *Cache) Invalidate(source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.filePath(source)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// InvalidateAll removes all cached entries.
func (c *Cache) InvalidateAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, entry.Name()))
		}
	}
	return nil
}

func (c *Cache) filePath(source string) string {
	safeName := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, source)
	return filepath.Join(c.dir, safeName+".json")
}
