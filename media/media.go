// Package media uploads images to the blob store before a document commits
// and removes them once the document no longer references them.
package media

import (
	"context"
	"crypto/rand"
	"drawshare/core"
	"encoding/hex"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewKey returns 32 random bytes as 64 hex characters.
func NewKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// KeyFromURL returns the blob key a public URL points at.
func KeyFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	key := path.Base(p)
	if key == "." || key == "/" {
		return ""
	}
	return key
}

type Coordinator struct {
	blobs core.BlobStore
}

func NewCoordinator(blobs core.BlobStore) *Coordinator {
	return &Coordinator{blobs: blobs}
}

// Upload stores img under a fresh key and returns its public URL.
func (c *Coordinator) Upload(ctx context.Context, img *core.Image) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", core.Validation("An image file is required.")
	}

	contentType := img.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(img.Data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", core.Validation("Only image files are allowed.")
	}

	key, err := NewKey()
	if err != nil {
		return "", core.Upstream("Uploading the image failed, please try again.", err)
	}
	if err := c.blobs.Put(ctx, key, img.Data, contentType); err != nil {
		return "", core.Upstream("Uploading the image failed, please try again.", err)
	}

	logrus.WithFields(logrus.Fields{
		"blob_key":     key,
		"content_type": contentType,
		"filename":     img.Filename,
	}).Info("Image uploaded")
	return c.blobs.URL(key), nil
}

// Discard deletes the blob behind imageURL. An empty URL is a no-op.
func (c *Coordinator) Discard(ctx context.Context, imageURL string) error {
	key := KeyFromURL(imageURL)
	if key == "" {
		return nil
	}
	if err := c.blobs.Delete(ctx, key); err != nil {
		return core.Upstream("Removing the image failed.", err)
	}
	logrus.WithField("blob_key", key).Info("Image removed")
	return nil
}

// DiscardQuietly is Discard for cleanup paths where the caller already has
// an error to report.
func (c *Coordinator) DiscardQuietly(ctx context.Context, imageURL string) {
	if err := c.Discard(ctx, imageURL); err != nil {
		logrus.WithField("image_url", imageURL).WithError(err).Warn("Failed to remove orphaned image")
	}
}
