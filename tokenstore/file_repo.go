package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

type fileEntry struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileRepo keeps tokens in a single JSON document readable only by the owner.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

var _ Repo = (*FileRepo)(nil)

func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

func (r *FileRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, _, err := r.read()
	if err != nil {
		return "", err
	}
	entry, ok := entries[key]
	if !ok || entry.Token == "" {
		return "", ErrNotFound
	}
	return entry.Token, nil
}

func (r *FileRepo) Set(_ context.Context, key, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, _, err := r.read()
	if err != nil {
		return err
	}
	entries[key] = fileEntry{Token: token, ExpiresAt: expiresAt}
	return r.write(entries)
}

func (r *FileRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, corrupt, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok && !corrupt {
		return nil
	}
	delete(entries, key)
	return r.write(entries)
}

// read loads the document. An undecodable document reads as empty and is
// reported as corrupt so the next write replaces it.
func (r *FileRepo) read() (map[string]fileEntry, bool, error) {
	entries := make(map[string]fileEntry)

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("tokenstore: failed to read %s: %w", r.path, err)
	}
	if len(data) == 0 {
		return entries, false, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", r.path).Msg("tokenstore: ignoring undecodable token file")
		return make(map[string]fileEntry), true, nil
	}
	return entries, false, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (r *FileRepo) write(entries map[string]fileEntry) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("tokenstore: failed to create %s: %w", dir, err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("tokenstore: failed to encode tokens: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("tokenstore: failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: failed to chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokenstore: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("tokenstore: failed to replace %s: %w", r.path, err)
	}
	return nil
}
