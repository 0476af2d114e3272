package imagestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists uploaded item/profile images and returns a serveable URL.
// Upload failures are treated as fire-and-forget by callers: an item create
// or update must never fail because its image could not be stored.
type Store interface {
	Save(filename string, data []byte) (url string, key string, err error)
	Delete(key string) error
}

type diskStore struct {
	dir string
}

// NewDiskStore stores images under dir, served by the static file route.
func NewDiskStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

func (s *diskStore) Save(filename string, data []byte) (string, string, error) {
	ext := filepath.Ext(filename)
	key := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o644); err != nil {
		return "", "", fmt.Errorf("write image: %w", err)
	}
	return "/uploads/" + key, key, nil
}

func (s *diskStore) Delete(key string) error {
	if key == "" {
		return nil
	}
	return os.Remove(filepath.Join(s.dir, key))
}
