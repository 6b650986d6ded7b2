// Package cache memoizes parsed documents across runs, keyed by file
// path and modification time.
package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/7sedam7/krafna/internal/atomicfile"
	"github.com/7sedam7/krafna/internal/markdown"
)

// Blob layout: magic, one version byte, then a gob stream. A blob with
// the wrong magic or version is treated as absent.
var blobMagic = []byte("KRFC")

const blobVersion = 1

// DefaultCapacity bounds the in-memory entry count when the caller
// does not configure one.
const DefaultCapacity = 4096

// Key identifies one parsed document. A file edit changes Mtime and
// naturally misses the stale entry.
type Key struct {
	Path  string
	Mtime int64
}

type persistedEntry struct {
	Key Key
	Doc *markdown.Document
}

// Cache is safe for concurrent use. Lookups and insertions take a
// single lock; parsing runs outside it, so two workers racing on the
// same file may both parse and agree on the (idempotent) result.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache[Key, *markdown.Document]
	byPath map[string]Key
	path   string
}

// Open loads the persisted blob at path, falling back to an empty
// cache when the blob is missing, unreadable, or from an incompatible
// version. path may be empty for a memory-only cache.
func Open(path string, capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{byPath: make(map[string]Key), path: path}
	l, err := lru.NewWithEvict[Key, *markdown.Document](capacity, func(k Key, _ *markdown.Document) {
		if c.byPath[k.Path] == k {
			delete(c.byPath, k.Path)
		}
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	if path != "" {
		c.load(path)
	}
	return c, nil
}

func (c *Cache) load(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if len(raw) < len(blobMagic)+1 || !bytes.Equal(raw[:len(blobMagic)], blobMagic) {
		return
	}
	if raw[len(blobMagic)] != blobVersion {
		return
	}
	var entries []persistedEntry
	dec := gob.NewDecoder(bytes.NewReader(raw[len(blobMagic)+1:]))
	if err := dec.Decode(&entries); err != nil {
		return
	}
	for _, e := range entries {
		c.insert(e.Key, e.Doc)
	}
}

// insert records key, discarding any entry held for the same path
// under a different mtime. Callers hold c.mu (or, in load, sole
// ownership of a cache not yet shared).
func (c *Cache) insert(key Key, doc *markdown.Document) {
	if prev, ok := c.byPath[key.Path]; ok && prev != key {
		c.lru.Remove(prev)
	}
	c.lru.Add(key, doc)
	c.byPath[key.Path] = key
}

// Get returns the cached document for (path, mtime), parsing and
// inserting it on a miss.
func (c *Cache) Get(path string, mtime time.Time, parse func() (*markdown.Document, error)) (*markdown.Document, error) {
	key := Key{Path: path, Mtime: mtime.UnixNano()}

	c.mu.Lock()
	doc, ok := c.lru.Get(key)
	c.mu.Unlock()
	if ok {
		return doc, nil
	}

	doc, err := parse()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.insert(key, doc)
	c.mu.Unlock()
	return doc, nil
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Save persists the current entries. A memory-only cache saves to
// nowhere and reports success.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	keys := c.lru.Keys()
	entries := make([]persistedEntry, 0, len(keys))
	for _, k := range keys {
		if doc, ok := c.lru.Peek(k); ok {
			entries = append(entries, persistedEntry{Key: k, Doc: doc})
		}
	}
	c.mu.Unlock()

	var buf bytes.Buffer
	buf.Write(blobMagic)
	buf.WriteByte(blobVersion)
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := atomicfile.WriteFile(c.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// DefaultPath places the blob under the user cache directory.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "krafna", "documents.bin")
}
