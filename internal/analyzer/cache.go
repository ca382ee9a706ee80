package analyzer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter"
)

// entry is a cached analysis along with the file state it was built from.
type entry struct {
	file    *File
	size    int64
	modTime time.Time
}

// Cache keeps analyzed files in memory between requests. An entry is reused
// only while the file's size and modification time are unchanged.
type Cache struct {
	analyzer *Analyzer
	entries  otter.Cache[string, entry]

	mu      sync.Mutex
	onStore []func(path string) error
}

// NewCache creates a cache holding at most capacity files.
func NewCache(analyzer *Analyzer, capacity int) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}

	entries, err := otter.MustBuilder[string, entry](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build cache: %w", err)
	}

	return &Cache{analyzer: analyzer, entries: entries}, nil
}

// OnStore registers fn to be called with the absolute path of every newly
// cached file.
func (c *Cache) OnStore(fn func(path string) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStore = append(c.onStore, fn)
}

// Get returns the cached analysis of path, analyzing it when missing or stale.
func (c *Cache) Get(ctx context.Context, path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if e, ok := c.entries.Get(abs); ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		return e.file, nil
	}

	file, err := c.analyzer.AnalyzePath(ctx, abs)
	if err != nil {
		return nil, err
	}

	c.entries.Set(abs, entry{file: file, size: info.Size(), modTime: info.ModTime()})
	c.notify(abs)
	return file, nil
}

func (c *Cache) notify(path string) {
	c.mu.Lock()
	hooks := append([]func(string) error(nil), c.onStore...)
	c.mu.Unlock()

	for _, fn := range hooks {
		if err := fn(path); err != nil {
			log.Printf("Warning: failed to watch %s: %v", path, err)
		}
	}
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	c.entries.Delete(path)
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	return c.entries.Size()
}

// Close releases the cache.
func (c *Cache) Close() {
	c.entries.Close()
}
