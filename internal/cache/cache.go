// Package cache stores encoded percentile results on disk, keyed by a BLAKE3
// digest of the input document and the parameters that shaped the result.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zeebo/blake3"
)

// Cache provides file-based caching for computed results.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry is a cached result as stored on disk.
type Entry struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a cache rooted at dir. A disabled cache ignores every call.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Dir returns the directory entries are stored in.
func (c *Cache) Dir() string {
	return c.dir
}

// Key derives a cache key from the raw input and the parameters of a
// computation. Params are sorted first, so flag order does not matter.
func Key(input []byte, params ...string) string {
	sorted := append([]string(nil), params...)
	sort.Strings(sorted)

	h := blake3.New()
	_, _ = h.Write(input)
	for _, p := range sorted {
		// NUL separators keep ("ab","c") and ("a","bc") apart
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached entry if it exists and is not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false
	}
	if entry.Key != key {
		return nil, false
	}

	if time.Since(entry.Timestamp) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// Set stores data in the cache.
func (c *Cache) Set(key string, data []byte) error {
	if !c.enabled {
		return nil
	}

	raw, err := json.Marshal(Entry{
		Key:       key,
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), raw, 0o600)
}

// Invalidate removes a cache entry. Missing entries are not an error.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.keyPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cache entries. The directory itself is recreated so the
// cache stays usable.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// keyPath converts a key to a filesystem path.
func (c *Cache) keyPath(key string) string {
	hash := blake3.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats walks the cache directory and summarizes its entries.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == c.dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
