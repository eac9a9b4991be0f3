package stores

import (
	"context"
	"drawshare/config"
	"drawshare/core"
	"drawshare/stores/aws"
	"drawshare/stores/filesystem"
	"drawshare/stores/memory"
	"drawshare/stores/minio"
	"drawshare/stores/redis"
	"drawshare/stores/sqlite"
	"fmt"

	"github.com/sirupsen/logrus"
)

// GetStore opens the document store selected by STORAGE_TYPE.
func GetStore(cfg config.Config) (core.Store, error) {
	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	var store core.Store
	switch cfg.StorageType {
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		s, err := sqlite.NewDocumentStore(cfg.DataSourceName)
		if err != nil {
			return nil, err
		}
		store = s
	case "memory", "":
		store = memory.NewDocumentStore()
		storageField["storageType"] = "in-memory"
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}

// GetBlobStore opens the image store selected by BLOB_STORE.
func GetBlobStore(ctx context.Context, cfg config.Config) (core.BlobStore, error) {
	blobField := logrus.Fields{
		"blobStore": cfg.BlobStore,
	}

	var blobs core.BlobStore
	switch cfg.BlobStore {
	case "filesystem":
		blobField["basePath"] = cfg.LocalStoragePath
		s, err := filesystem.NewBlobStore(cfg.LocalStoragePath, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		blobs = s
	case "s3":
		if cfg.S3BucketName == "" {
			return nil, fmt.Errorf("S3_BUCKET_NAME environment variable must be set for s3 blob store")
		}
		blobField["bucketName"] = cfg.S3BucketName
		s, err := aws.NewBlobStore(ctx, cfg.S3BucketName, cfg.S3Region)
		if err != nil {
			return nil, err
		}
		blobs = s
	case "minio":
		if cfg.MinioEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT environment variable must be set for minio blob store")
		}
		blobField["endpoint"] = cfg.MinioEndpoint
		blobField["bucketName"] = cfg.MinioBucket
		s, err := minio.NewBlobStore(ctx, minio.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		blobs = s
	case "memory", "":
		blobs = memory.NewBlobStore(cfg.PublicBaseURL)
		blobField["blobStore"] = "in-memory"
	default:
		return nil, fmt.Errorf("unknown blob store %q", cfg.BlobStore)
	}
	logrus.WithFields(blobField).Info("Use blob store")
	return blobs, nil
}

// GetDenylist returns the Redis revocation list when REDIS_URL is set and
// an in-process one otherwise.
func GetDenylist(cfg config.Config) (core.TokenDenylist, error) {
	if cfg.RedisURL == "" {
		logrus.Info("Use in-memory token denylist")
		return memory.NewDenylist(), nil
	}
	d, err := redis.NewDenylist(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	logrus.Info("Use redis token denylist")
	return d, nil
}
