package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists a single token record.
type Store interface {
	// Load returns the record, ErrNoToken when there is none, or an error
	// wrapping ErrCorruptToken when it cannot be parsed.
	Load(ctx context.Context) (*Token, error)

	// Save replaces the record.
	Save(ctx context.Context, tok Token) error
}

// FileStore keeps the token as a flat JSON file. The containing directory
// must already exist.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and parses the token file.
func (s *FileStore) Load(ctx context.Context) (*Token, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 - path is supplied by the host
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptToken, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access_token", ErrCorruptToken)
	}
	return &tok, nil
}

// Save writes the record to a temporary file next to the target and renames
// it into place, so readers only ever see a complete record.
func (s *FileStore) Save(ctx context.Context, tok Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing token: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}

// Verify FileStore implements Store
var _ Store = (*FileStore)(nil)
