package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"filevault/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newS3Against(t *testing.T, h http.HandlerFunc) *S3Backend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewS3(S3Config{
		Endpoint:     srv.URL,
		Region:       "us-east-1",
		Bucket:       "vault",
		AccessKey:    "key",
		SecretKey:    "secret",
		Prefix:       "uploads",
		UsePathStyle: true,
	})
}

func TestS3_List(t *testing.T) {
	var gotPrefix string
	b := newS3Against(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefix = r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>vault</Name>
  <Prefix>uploads/7/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>uploads/7/a.txt</Key><Size>5</Size></Contents>
  <Contents><Key>uploads/7/b.txt</Key><Size>3</Size></Contents>
</ListBucketResult>`))
	})

	entries, err := b.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "uploads/7/", gotPrefix)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "vault/uploads/7/a.txt", entries[0].Path)
	assert.Equal(t, int64(5), entries[0].Size)
	assert.Equal(t, "b.txt", entries[1].Name)
}

func TestS3_GetMissingKey(t *testing.T) {
	b := newS3Against(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
	})

	_, err := b.Get(context.Background(), 7, "missing.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestS3_PutStreamsSeekableBody(t *testing.T) {
	var (
		gotPath   string
		gotLength int64
		gotBody   []byte
	)
	b := newS3Against(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLength = r.ContentLength
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	entry, err := b.Put(context.Background(), 7, "a.txt", bytes.NewReader([]byte("hello")), 5)
	require.NoError(t, err)

	assert.Equal(t, "/vault/uploads/7/a.txt", gotPath)
	assert.Equal(t, int64(5), gotLength)
	assert.Contains(t, string(gotBody), "hello")
	assert.Equal(t, int64(5), entry.Size)
	assert.Equal(t, "vault/uploads/7/a.txt", entry.Path)
}

func TestS3_PutBuffersUnknownSize(t *testing.T) {
	var gotLength int64
	b := newS3Against(t, func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	})

	// strings.Reader seeks, but the size is unknown; a plain reader does neither
	for _, src := range []io.Reader{strings.NewReader("abc"), io.MultiReader(strings.NewReader("abc"))} {
		size := int64(-1)
		entry, err := b.Put(context.Background(), 7, "b.txt", src, size)
		require.NoError(t, err)
		assert.Equal(t, int64(3), entry.Size)
		assert.Equal(t, int64(3), gotLength)
	}
}
