package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExporter_Export(t *testing.T) {
	c := NewInMemoryCache(3600)
	c.Set("b-key", "Bye, Xiaoming.")
	c.Set("a-key", "Hello, world!")

	exporter := NewExporter(c)
	var buf bytes.Buffer

	if err := exporter.Export(&buf, map[string]string{"model": "ernie-lite-8k"}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}

	if snap.Version != FormatVersion {
		t.Errorf("Expected version %s, got %s", FormatVersion, snap.Version)
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(snap.Entries))
	}
	if snap.Entries[0].Key != "a-key" || snap.Entries[1].Key != "b-key" {
		t.Errorf("Expected entries sorted by key, got %+v", snap.Entries)
	}
	if snap.Metadata["model"] != "ernie-lite-8k" {
		t.Errorf("Expected metadata model=ernie-lite-8k, got %v", snap.Metadata)
	}
}

func TestImporter_Import(t *testing.T) {
	jsonData := `{
		"version": "1",
		"exported_at": "2024-01-01T00:00:00Z",
		"entries": [
			{"key": "key1", "translation": "Hello, world!"},
			{"key": "key2", "translation": "Bye, Xiaoming."},
			{"key": "", "translation": "orphan"},
			{"key": "key3", "translation": ""}
		],
		"metadata": {"model": "ernie-lite-8k"}
	}`

	c := NewInMemoryCache(3600)
	result, err := NewImporter(c).Import(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if result.Failed != 2 {
		t.Errorf("Expected 2 failed, got %d", result.Failed)
	}
	if result.Version != "1" || result.Metadata["model"] != "ernie-lite-8k" {
		t.Errorf("unexpected result header %+v", result)
	}

	if val, ok := c.Get("key1"); !ok || val != "Hello, world!" {
		t.Errorf("key1 not found or wrong value: %s", val)
	}
	if _, ok := c.Get("key3"); ok {
		t.Error("empty translations should not be imported")
	}
}

func TestExportImport_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	src := NewInMemoryCache(0)
	src.Set("k1", "Hola")
	src.Set("k2", "<b>Mundo</b>")

	if err := NewExporter(src).ExportToFile(path, nil); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	dst := NewInMemoryCache(0)
	result, err := NewImporter(dst).ImportFromFile(path)
	if err != nil {
		t.Fatalf("ImportFromFile failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if val, ok := dst.Get("k2"); !ok || val != "<b>Mundo</b>" {
		t.Errorf("k2 not found or wrong value: %q", val)
	}
}

func TestExporter_EmptyCache(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter(NewInMemoryCache(3600)).Export(&buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}
	if len(snap.Entries) != 0 {
		t.Errorf("Expected 0 entries for empty cache, got %d", len(snap.Entries))
	}
}

func TestImporter_InvalidJSON(t *testing.T) {
	_, err := NewImporter(NewInMemoryCache(3600)).Import(strings.NewReader("invalid json"))
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestImporter_MissingFile(t *testing.T) {
	_, err := NewImporter(NewInMemoryCache(0)).ImportFromFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}
