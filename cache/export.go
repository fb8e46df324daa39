package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ZaguanLabs/tlrun"
)

const exportVersion = "1.0"

// ExportFormat is the JSON layout of a cache file.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is a single cache entry.
type ExportEntry struct {
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	StoredAt time.Time `json:"stored_at,omitempty"`
}

// Exporter writes an in-memory cache as JSON.
type Exporter struct {
	cache *InMemoryCache
}

// NewExporter creates a new cache exporter.
func NewExporter(cache *InMemoryCache) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the live entries, sorted by key.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	entries := e.cache.Entries()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	export := ExportFormat{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile replaces path atomically with the exported cache.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tlrun-cache-*")
	if err != nil {
		return &tlrun.CacheError{Message: "creating temp file", Cause: err}
	}
	defer os.Remove(tmp.Name())

	if err := e.Export(tmp, metadata); err != nil {
		tmp.Close()
		return &tlrun.CacheError{Message: "writing cache file", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &tlrun.CacheError{Message: "writing cache file", Cause: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &tlrun.CacheError{Message: "replacing cache file", Cause: err}
	}
	return nil
}

// Importer loads exported entries into a cache.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// Import reads cache entries from r. Entries keep their original store time
// when the target is an InMemoryCache, so TTLs survive a round trip.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	mem, isMem := i.cache.(*InMemoryCache)
	for _, entry := range export.Entries {
		if isMem && !entry.StoredAt.IsZero() {
			if mem.expired(cacheEntry{timestamp: entry.StoredAt}, mem.now()) {
				result.Expired++
				continue
			}
			mem.setAt(entry.Key, entry.Value, entry.StoredAt)
			result.Imported++
			continue
		}
		if err := i.cache.Set(entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file. A missing file imports nothing.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is user-provided
	if errors.Is(err, os.ErrNotExist) {
		return &ImportResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Expired  int
	Failed   int
}

// FileCache is an InMemoryCache loaded from and saved back to a JSON file,
// so the one-shot runners can share translations across invocations.
type FileCache struct {
	*InMemoryCache
	path  string
	dirty bool
}

// OpenFileCache loads path (if it exists) into a new cache.
func OpenFileCache(path string, ttlSeconds int) (*FileCache, error) {
	c := &FileCache{InMemoryCache: NewInMemoryCache(ttlSeconds), path: path}
	if _, err := NewImporter(c.InMemoryCache).ImportFromFile(path); err != nil {
		return nil, &tlrun.CacheError{Message: "loading " + path, Cause: err}
	}
	return c, nil
}

// Set stores a value and marks the file for saving.
func (c *FileCache) Set(key, value string) error {
	c.dirty = true
	return c.InMemoryCache.Set(key, value)
}

// Close writes the cache back when something changed.
func (c *FileCache) Close() error {
	if !c.dirty {
		return nil
	}
	return NewExporter(c.InMemoryCache).ExportToFile(c.path, map[string]string{
		"generator": tlrun.FullVersion(),
	})
}

var _ Store = (*FileCache)(nil)
