package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Cache maps content hashes to extraction results. The persisted file is a single JSON object and is
// rewritten completely on every Set.
type Cache struct {
	path string

	mu      sync.RWMutex
	entries map[string]string
}

type Stats struct {
	Count int `json:"total_cached"`
	Size  int `json:"cache_size_bytes"`
}

// New loads path fully into memory. An empty path keeps the cache in memory only; a missing file
// starts an empty cache.
func New(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]string),
	}

	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)

	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}

	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return c, nil
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("invalid cache file %s: %w", path, err)
	}

	slog.Info("cache loaded", "path", path, "entries", len(c.entries))

	return c, nil
}

// Hash returns the hex sha-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *Cache) Get(hash string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.entries[hash]
	return value, ok
}

// Set stores value under hash and flushes the whole snapshot. The in-memory entry is kept even if
// flushing fails.
func (c *Cache) Set(hash, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[hash] = value

	return c.flush()
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	size := 0

	for k, v := range c.entries {
		size += len(k) + len(v)
	}

	return Stats{
		Count: len(c.entries),
		Size:  size,
	}
}

func (c *Cache) flush() error {
	if c.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")

	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")

	if err != nil {
		return err
	}

	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), c.path)
}
