package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBudgetBytes is the cache size ceiling used when a Cache is built
// with budget 0. Eviction brings on-disk usage back down to 90% of this
// once it's exceeded.
const DefaultBudgetBytes int64 = 1 << 30 // 1 GiB

const evictionTargetRatio = 0.9

// Cache is a content-addressed, bounded filesystem cache of winning
// encodings. Every entry is two files: "<hex>.<format>" (the encoded
// bytes) and "<hex>.<format>.meta" (compact JSON, see Meta).
type Cache struct {
	dir    string
	budget int64
	logger zerolog.Logger
}

// New opens (creating if needed) a Cache rooted at dir. budget<=0 uses
// DefaultBudgetBytes.
func New(dir string, budget int64, logger zerolog.Logger) (*Cache, error) {
	if budget <= 0 {
		budget = DefaultBudgetBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: mkdir %s: %w", dir, err)
	}
	return &Cache{dir: dir, budget: budget, logger: logger}, nil
}

func (c *Cache) dataPath(key Key, format string) string {
	return filepath.Join(c.dir, hex.EncodeToString(key[:])+"."+format)
}

func (c *Cache) metaPath(key Key, format string) string {
	return c.dataPath(key, format) + ".meta"
}

// Entry is a cache hit: the encoded bytes plus its metadata.
type Entry struct {
	Data []byte
	Meta Meta
}

// Get looks up an entry by key and format. A miss (os.IsNotExist) is not
// an error — callers check the bool — and a meta file left behind without
// its data file is removed. Any other I/O failure is logged and treated as
// a miss: cache errors are never fatal to an Optimize call.
func (c *Cache) Get(key Key, format string) (*Entry, bool) {
	data, err := os.ReadFile(c.dataPath(key, format))
	if err != nil {
		if os.IsNotExist(err) {
			os.Remove(c.metaPath(key, format))
		} else {
			c.logger.Debug().Err(err).Str("format", format).Msg("cache read error, treating as miss")
		}
		return nil, false
	}
	metaRaw, err := os.ReadFile(c.metaPath(key, format))
	if err != nil {
		c.logger.Debug().Err(err).Str("format", format).Msg("cache meta missing, treating as miss and cleaning up")
		c.removeEntry(key, format)
		return nil, false
	}
	meta, err := unmarshalMeta(metaRaw)
	if err != nil {
		c.logger.Debug().Err(err).Str("format", format).Msg("cache meta corrupt, treating as miss and cleaning up")
		c.removeEntry(key, format)
		return nil, false
	}

	meta.AccessCount++
	meta.Timestamp = time.Now().Unix()
	c.writeMetaBestEffort(key, format, meta)

	return &Entry{Data: data, Meta: *meta}, true
}

// Put atomically stores data and its metadata under key/format, then runs
// an eviction sweep if the cache now exceeds its budget. Any failure here
// is returned to the caller for logging but never surfaced as a fatal
// Optimize error — a cache write failure degrades to "recompute next
// time", not a lost result.
func (c *Cache) Put(key Key, format string, data []byte, meta Meta) error {
	meta.Timestamp = time.Now().Unix()
	meta.FileSize = int64(len(data))

	if err := c.writeAtomic(c.dataPath(key, format), data); err != nil {
		return err
	}
	raw, err := meta.marshal()
	if err != nil {
		return err
	}
	if err := c.writeAtomic(c.metaPath(key, format), raw); err != nil {
		return err
	}

	c.evictIfOverBudget()
	return nil
}

func (c *Cache) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

func (c *Cache) writeMetaBestEffort(key Key, format string, meta *Meta) {
	raw, err := meta.marshal()
	if err != nil {
		return
	}
	_ = c.writeAtomic(c.metaPath(key, format), raw)
}

func (c *Cache) removeEntry(key Key, format string) {
	os.Remove(c.dataPath(key, format))
	os.Remove(c.metaPath(key, format))
}

// Clear removes every entry in the cache directory.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
