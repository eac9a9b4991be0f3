// Package config reads server settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	// Development disables the Secure flag on the session cookie.
	Development bool
	CORSOrigins []string

	StorageType    string
	DataSourceName string

	BlobStore        string
	LocalStoragePath string
	PublicBaseURL    string
	MaxUploadBytes   int64

	S3BucketName string
	S3Region     string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	RedisURL string
}

func Load() Config {
	return Config{
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    getenvDuration("TOKEN_TTL", time.Hour),
		Development: getenv("APP_ENV", "production") == "development",
		CORSOrigins: getenvList("CORS_ORIGINS", []string{"https://*", "http://*"}),

		StorageType:    getenv("STORAGE_TYPE", "memory"),
		DataSourceName: getenv("DATA_SOURCE_NAME", "drawshare.db"),

		BlobStore:        getenv("BLOB_STORE", "memory"),
		LocalStoragePath: getenv("LOCAL_STORAGE_PATH", "./data/uploads"),
		PublicBaseURL:    strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:5000"), "/"),
		MaxUploadBytes:   int64(getenvInt("MAX_UPLOAD_BYTES", 10<<20)),

		S3BucketName: os.Getenv("S3_BUCKET_NAME"),
		S3Region:     os.Getenv("S3_REGION"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "drawings"),
		MinioUseSSL:    getenvBool("MINIO_USE_SSL", false),

		RedisURL: os.Getenv("REDIS_URL"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getenvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
