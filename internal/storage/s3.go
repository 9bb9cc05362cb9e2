package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"filevault/internal/apperrors"
	"filevault/internal/model/fileInfo"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Endpoint     string `env:"S3_ENDPOINT"`
	Region       string `env:"S3_REGION" env-default:"us-east-1"`
	Bucket       string `env:"S3_BUCKET"`
	AccessKey    string `env:"S3_ACCESS_KEY"`
	SecretKey    string `env:"S3_SECRET_KEY"`
	Prefix       string `env:"S3_PREFIX" env-default:"uploads"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE" env-default:"true"`
}

type S3Backend struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3(cfg S3Config) *S3Backend {
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		),
	}

	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Backend{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}
}

func (b *S3Backend) Name() string {
	return "s3"
}

func (b *S3Backend) key(ownerID int64, name string) string {
	return objectPrefix(b.prefix, ownerID) + name
}

func (b *S3Backend) EnsureNamespace(context.Context, int64) error {
	return nil
}

func (b *S3Backend) List(ctx context.Context, ownerID int64) ([]fileInfo.Entry, error) {
	prefix := objectPrefix(b.prefix, ownerID)

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	entries := []fileInfo.Entry{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list S3 objects: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" {
				continue
			}
			entries = append(entries, fileInfo.Entry{
				Name: name,
				Path: b.bucket + "/" + aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			})
		}
	}
	return entries, nil
}

// Put streams r when it can be rewound and its size is known (multipart
// parts are both). Anything else is buffered first, since request signing
// has to read the payload before sending it.
func (b *S3Backend) Put(ctx context.Context, ownerID int64, name string, r io.Reader, size int64) (fileInfo.Entry, error) {
	key := b.key(ownerID, name)

	body, ok := r.(io.ReadSeeker)
	if !ok || size < 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return fileInfo.Entry{}, fmt.Errorf("failed to read data: %w", err)
		}
		body, size = bytes.NewReader(data), int64(len(data))
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fileInfo.Entry{}, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fileInfo.Entry{Name: name, Path: b.bucket + "/" + key, Size: size}, nil
}

func (b *S3Backend) Get(ctx context.Context, ownerID int64, name string) ([]byte, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(ownerID, name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object: %w", err)
	}
	return data, nil
}

// Delete relies on S3 treating removal of a missing key as success.
func (b *S3Backend) Delete(ctx context.Context, ownerID int64, name string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(ownerID, name)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
