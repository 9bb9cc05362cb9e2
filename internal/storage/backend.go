// Package storage provides the byte stores behind the scoped file service.
// Every backend keeps one namespace per owner id; the file service is
// responsible for validating names before they reach a backend.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"

	"filevault/internal/model/fileInfo"
)

type Config struct {
	Backend string `env:"STORAGE_BACKEND" env-default:"local" validate:"oneof=local minio s3"`
	Root    string `env:"STORAGE_ROOT" env-default:"uploads" validate:"required"`
	MinIO   MinIOConfig
	S3      S3Config
}

// Backend stores opaque blobs keyed by (owner, name).
//
// Get returns an error matching apperrors.ErrNotFound when the name is absent.
// Delete of an absent name succeeds. Put overwrites.
type Backend interface {
	EnsureNamespace(ctx context.Context, ownerID int64) error
	List(ctx context.Context, ownerID int64) ([]fileInfo.Entry, error)
	Put(ctx context.Context, ownerID int64, name string, r io.Reader, size int64) (fileInfo.Entry, error)
	Get(ctx context.Context, ownerID int64, name string) ([]byte, error)
	Delete(ctx context.Context, ownerID int64, name string) error
	Name() string
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.Root)
	case "minio":
		return NewMinIO(ctx, cfg.MinIO)
	case "s3":
		return NewS3(cfg.S3), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// objectPrefix is the key prefix of an owner namespace in an object store.
func objectPrefix(prefix string, ownerID int64) string {
	return path.Join(prefix, strconv.FormatInt(ownerID, 10)) + "/"
}
