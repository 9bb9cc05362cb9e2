package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"filevault/internal/apperrors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMinIOAgainst(t *testing.T, h http.HandlerFunc) *MinIOBackend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("key", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return &MinIOBackend{client: client, bucket: "vault", prefix: "uploads"}
}

func TestMinIO_ListSkipsNestedKeys(t *testing.T) {
	var gotPrefix string
	b := newMinIOAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefix = r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>vault</Name>
  <Prefix>uploads/3/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>uploads/3/a.txt</Key><Size>5</Size></Contents>
  <Contents><Key>uploads/3/nested/b.txt</Key><Size>3</Size></Contents>
</ListBucketResult>`))
	})

	entries, err := b.List(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "uploads/3/", gotPrefix)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "vault/uploads/3/a.txt", entries[0].Path)
}

func TestMinIO_GetMissingKey(t *testing.T) {
	b := newMinIOAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
	})

	_, err := b.Get(context.Background(), 3, "missing.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
