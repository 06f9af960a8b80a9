// Package storage reads and writes import/export documents in an object
// store bucket (MinIO, Amazon S3 or Google Cloud Storage).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/port-russell/marina/config"
)

// ErrObjectNotFound is returned when the requested key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Bucket() string
}

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "minio":
		return NewMinioClient(cfg.Minio)
	case "s3":
		return NewS3Client(ctx, cfg.S3)
	case "gcs":
		return NewGCSClient(ctx, cfg.GCS)
	case "":
		return nil, errors.New("object storage is not configured (set STORAGE_BACKEND)")
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ReadAll fetches the whole object stored under key.
func ReadAll(ctx context.Context, store ObjectStorage, key string) ([]byte, error) {
	rc, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", store.Bucket(), key, err)
	}
	return data, nil
}
