package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type fsBlobStore struct {
	basePath string
	baseURL  string
}

// NewBlobStore creates a blob store writing one file per key under basePath.
// Objects are served by the router under baseURL + "/uploads/".
func NewBlobStore(basePath, baseURL string) (*fsBlobStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fsBlobStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// BasePath is the directory the router serves uploads from.
func (s *fsBlobStore) BasePath() string {
	return s.basePath
}

func (s *fsBlobStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.basePath, key), nil
}

func (s *fsBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	filePath, err := s.path(key)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{
		"blob_key":  key,
		"file_path": filePath,
	})

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write blob")
		return err
	}
	log.Info("Blob written successfully")
	return nil
}

func (s *fsBlobStore) Delete(ctx context.Context, key string) error {
	filePath, err := s.path(key)
	if err != nil {
		return err
	}
	log := logrus.WithField("blob_key", key)

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			log.Warn("Blob already removed")
			return nil
		}
		log.WithError(err).Error("Failed to remove blob")
		return err
	}
	log.Info("Blob removed successfully")
	return nil
}

func (s *fsBlobStore) URL(key string) string {
	return s.baseURL + "/uploads/" + key
}
