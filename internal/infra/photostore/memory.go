package photostore

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sync"

	"github.com/yanqian/glucobot/internal/domain/meal"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

// MemoryStorage keeps photos in memory. Useful for tests and local dev.
type MemoryStorage struct {
	mu     sync.RWMutex
	photos map[string]storedPhoto
}

type storedPhoto struct {
	data     []byte
	mimeType string
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{photos: make(map[string]storedPhoto)}
}

// Put stores the photo and returns metadata.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (meal.StoredPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := append([]byte(nil), data...)
	hash := md5.Sum(copied)
	s.photos[key] = storedPhoto{data: copied, mimeType: mimeType}
	return meal.StoredPhoto{
		Key:      key,
		Size:     int64(len(copied)),
		MimeType: mimeType,
		ETag:     hex.EncodeToString(hash[:]),
	}, nil
}

// Get returns a reader for the stored photo.
func (s *MemoryStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	photo, ok := s.photos[key]
	if !ok {
		return nil, apperrors.Wrap(apperrors.CodeNotFound, "photo not found", nil)
	}
	return io.NopCloser(bytes.NewReader(photo.data)), nil
}

// Delete removes the photo.
func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.photos, key)
	return nil
}

var _ meal.PhotoStorage = (*MemoryStorage)(nil)
