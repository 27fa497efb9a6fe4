package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"year-progress-bot/internal/domain"
)

// FileStore keeps the state document in a local JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("repository: state file path must not be empty")
	}
	return &FileStore{path: path}, nil
}

// Path returns the state file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the state file. A missing file is an empty state.
func (f *FileStore) Load(_ context.Context) (*domain.State, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: read state file: %w", err)
	}
	st := domain.NewState()
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("repository: decode state file %q: %w", f.path, err)
	}
	return st, nil
}

// Save replaces the state file atomically: the document is written to a
// temporary file in the same directory and renamed over the target.
func (f *FileStore) Save(_ context.Context, st *domain.State) error {
	if st == nil {
		return errors.New("repository: state must not be nil")
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("repository: encode state: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("repository: create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("repository: write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("repository: sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("repository: close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("repository: replace state file: %w", err)
	}
	return nil
}
