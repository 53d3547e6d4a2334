package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/mtyhostal/apiserver/internal/storage"
)

// ImageUpload is the reference a successful upload leaves behind: the public
// URL to embed in responses and the provider id needed to delete the remote
// copy later.
type ImageUpload struct {
	URL      string
	PublicID string
}

// ImageStore is the remote image host collaborator. Both calls are fallible
// network operations with no automatic retry.
type ImageStore interface {
	Upload(ctx context.Context, filename string, data []byte, contentType string) (ImageUpload, error)
	Delete(ctx context.Context, publicID string) error
}

// ObjectImageStore implements ImageStore on top of an object storage
// backend. Object keys double as provider ids.
type ObjectImageStore struct {
	storage *storage.Storage
}

func NewObjectImageStore(st *storage.Storage) *ObjectImageStore {
	return &ObjectImageStore{storage: st}
}

// Upload stores the image under a fresh uuid key, keeping the original
// extension so served objects carry a usable suffix.
func (s *ObjectImageStore) Upload(ctx context.Context, filename string, data []byte, contentType string) (ImageUpload, error) {
	key := uuid.NewString()
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		key += ext
	}

	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return ImageUpload{}, fmt.Errorf("%w: %v", ErrImageHost, err)
	}

	return ImageUpload{
		URL:      s.storage.PublicURL(key),
		PublicID: key,
	}, nil
}

// Delete removes the remote object identified by publicID.
func (s *ObjectImageStore) Delete(ctx context.Context, publicID string) error {
	if err := s.storage.Delete(ctx, publicID); err != nil {
		return fmt.Errorf("%w: %v", ErrImageHost, err)
	}
	return nil
}
