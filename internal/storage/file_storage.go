package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"linkedin-scraper/internal/models"
)

// FileSessionStore keeps one JSON file per account in a directory
type FileSessionStore struct {
	dir   string
	locks sync.Map // key -> *sync.Mutex
}

// NewFileSessionStore creates dir if needed and returns a store rooted there
func NewFileSessionStore(dir string) (*FileSessionStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: cookie directory is empty", models.ErrConfiguration)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cookie directory: %w", err)
	}
	return &FileSessionStore{dir: dir}, nil
}

// Path returns the cookie file used for id
func (s *FileSessionStore) Path(id string) string {
	return filepath.Join(s.dir, "cookies_"+SessionKey(id)+".json")
}

func (s *FileSessionStore) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(SessionKey(id), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *FileSessionStore) Load(ctx context.Context, id string) ([]models.Cookie, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	unlock := s.lock(id)
	defer unlock()

	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var cookies []models.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, false, fmt.Errorf("failed to decode cookie file %s: %w", s.Path(id), err)
	}
	return strip(cookies), true, nil
}

func (s *FileSessionStore) Save(ctx context.Context, id string, cookies []models.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cookies == nil {
		cookies = []models.Cookie{}
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	unlock := s.lock(id)
	defer unlock()

	tmp, err := os.CreateTemp(s.dir, ".cookies-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cookie file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(id)); err != nil {
		return fmt.Errorf("failed to replace cookie file: %w", err)
	}
	return nil
}

func (s *FileSessionStore) Close() error { return nil }
