package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// FormatVersion is written into every export.
const FormatVersion = "1"

// Snapshot is the JSON document produced by Exporter.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []SnapshotEntry   `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SnapshotEntry is one cached translation.
type SnapshotEntry struct {
	Key         string `json:"key"`
	Translation string `json:"translation"`
}

// Exporter writes an in-memory cache to JSON.
type Exporter struct {
	cache *InMemoryCache
}

// NewExporter creates a new cache exporter.
func NewExporter(cache *InMemoryCache) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the live entries, sorted by key, to w.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	data := e.cache.Entries()

	snap := Snapshot{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    make([]SnapshotEntry, 0, len(data)),
		Metadata:   metadata,
	}
	for key, value := range data {
		snap.Entries = append(snap.Entries, SnapshotEntry{Key: key, Translation: value})
	}
	sort.Slice(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].Key < snap.Entries[j].Key
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports the cache to a file.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := e.Export(f, metadata); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Importer loads exported entries into any result cache.
type Importer struct {
	cache ResultCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache ResultCache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult contains statistics about an import.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads a snapshot from r and stores each entry.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  snap.Version,
		Metadata: snap.Metadata,
	}

	for _, e := range snap.Entries {
		if e.Key == "" || e.Translation == "" {
			result.Failed++
			continue
		}
		if err := i.cache.Set(e.Key, e.Translation); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}
