package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

type objectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type minioBlobStore struct {
	client  objectAPI
	bucket  string
	baseURL string
}

// NewBlobStore connects to an S3-compatible server and creates the bucket
// when it does not exist yet.
func NewBlobStore(ctx context.Context, opts Options) (*minioBlobStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", opts.Bucket, err)
		}
		logrus.WithField("bucket", opts.Bucket).Info("Created object storage bucket")
	}

	return &minioBlobStore{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: strings.TrimRight(client.EndpointURL().String(), "/"),
	}, nil
}

func (s *minioBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	logrus.WithFields(logrus.Fields{
		"blob_key": key,
		"bucket":   s.bucket,
		"size":     info.Size,
	}).Info("Blob uploaded to object storage")
	return nil
}

func (s *minioBlobStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// URL returns a path-style object URL.
func (s *minioBlobStore) URL(key string) string {
	return s.baseURL + "/" + s.bucket + "/" + key
}
