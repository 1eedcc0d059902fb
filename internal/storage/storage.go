package storage

import (
	"context"
	"io"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// MediaStore holds product images in an object storage backend and hands
// out the keys the API serves them back under.
type MediaStore struct {
	backend ObjectStorage
}

// NewMediaStore constructs a MediaStore for the provided backend.
func NewMediaStore(backend ObjectStorage) *MediaStore {
	return &MediaStore{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *MediaStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads a media object.
func (s *MediaStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for a stored media object.
func (s *MediaStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes a stored media object.
func (s *MediaStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (s *MediaStore) Bucket() string {
	return s.backend.Bucket()
}
