package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type blob struct {
	data        []byte
	contentType string
}

// BlobStore keeps objects in memory. It is the default when no object
// storage is configured and backs the tests.
type BlobStore struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string]blob
}

func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		blobs:   make(map[string]blob),
	}
}

func (s *BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("blob key is required")
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.blobs[key] = blob{data: cp, contentType: contentType}
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"blob_key":    key,
		"data_length": len(data),
	}).Debug("Blob stored in memory")
	return nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

func (s *BlobStore) URL(key string) string {
	return s.baseURL + "/uploads/" + key
}

// Get returns a stored object and its content type.
func (s *BlobStore) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	return b.data, b.contentType, ok
}

func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
