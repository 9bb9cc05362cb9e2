package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"filevault/internal/apperrors"
	"filevault/internal/model/fileInfo"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	Bucket    string `env:"MINIO_BUCKET_NAME" env-default:"storage"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
	Prefix    string `env:"MINIO_PREFIX" env-default:"uploads"`
}

type MinIOBackend struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIO connects to MinIO and creates the bucket unless it already exists.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIOBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := client.BucketExists(ctx, cfg.Bucket)
		if !(errBucketExists == nil && exists) {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinIOBackend{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (b *MinIOBackend) Name() string {
	return "minio"
}

func (b *MinIOBackend) key(ownerID int64, name string) string {
	return objectPrefix(b.prefix, ownerID) + name
}

// EnsureNamespace is a no-op: object prefixes exist as soon as a key does.
func (b *MinIOBackend) EnsureNamespace(context.Context, int64) error {
	return nil
}

func (b *MinIOBackend) List(ctx context.Context, ownerID int64) ([]fileInfo.Entry, error) {
	prefix := objectPrefix(b.prefix, ownerID)

	entries := []fileInfo.Entry{}
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		entries = append(entries, fileInfo.Entry{
			Name: name,
			Path: b.bucket + "/" + obj.Key,
			Size: obj.Size,
		})
	}
	return entries, nil
}

func (b *MinIOBackend) Put(ctx context.Context, ownerID int64, name string, r io.Reader, size int64) (fileInfo.Entry, error) {
	key := b.key(ownerID, name)
	info, err := b.client.PutObject(ctx, b.bucket, key, r, size, minio.PutObjectOptions{})
	if err != nil {
		return fileInfo.Entry{}, err
	}
	return fileInfo.Entry{Name: name, Path: b.bucket + "/" + key, Size: info.Size}, nil
}

func (b *MinIOBackend) Get(ctx context.Context, ownerID int64, name string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.key(ownerID, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, b.translate(err, name)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, b.translate(err, name)
	}
	return data, nil
}

func (b *MinIOBackend) Delete(ctx context.Context, ownerID int64, name string) error {
	err := b.client.RemoveObject(ctx, b.bucket, b.key(ownerID, name), minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return err
	}
	return nil
}

func (b *MinIOBackend) translate(err error, name string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, name)
	}
	return err
}
