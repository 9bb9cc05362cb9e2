package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"filevault/internal/apperrors"
	"filevault/internal/model/fileInfo"
)

const tmpDirName = ".tmp"

// LocalBackend keeps each namespace in <root>/<ownerID>/ on the local disk.
type LocalBackend struct {
	root string
}

func NewLocal(root string) (*LocalBackend, error) {
	if err := os.MkdirAll(filepath.Join(root, tmpDirName), 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalBackend{root: root}, nil
}

func (b *LocalBackend) Name() string {
	return "local"
}

func (b *LocalBackend) namespaceDir(ownerID int64) string {
	return filepath.Join(b.root, strconv.FormatInt(ownerID, 10))
}

// filePath joins name onto the namespace and refuses anything that does not
// land directly inside it.
func (b *LocalBackend) filePath(ownerID int64, name string) (string, error) {
	dir := b.namespaceDir(ownerID)
	p := filepath.Join(dir, name)
	if filepath.Dir(p) != dir {
		return "", fmt.Errorf("%w: name escapes namespace", apperrors.ErrInvalidInput)
	}
	return p, nil
}

func (b *LocalBackend) entry(p string, size int64) fileInfo.Entry {
	return fileInfo.Entry{Name: filepath.Base(p), Path: filepath.ToSlash(p), Size: size}
}

func (b *LocalBackend) EnsureNamespace(ctx context.Context, ownerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(b.namespaceDir(ownerID), 0o750)
}

func (b *LocalBackend) List(ctx context.Context, ownerID int64) ([]fileInfo.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := b.namespaceDir(ownerID)
	dirEntries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []fileInfo.Entry{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := make([]fileInfo.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, err
		}
		entries = append(entries, b.entry(filepath.Join(dir, de.Name()), info.Size()))
	}
	return entries, nil
}

// Put streams r into a temp file and renames it over the target, so readers
// never observe a partial file and the last writer wins.
func (b *LocalBackend) Put(ctx context.Context, ownerID int64, name string, r io.Reader, _ int64) (fileInfo.Entry, error) {
	if err := ctx.Err(); err != nil {
		return fileInfo.Entry{}, err
	}
	target, err := b.filePath(ownerID, name)
	if err != nil {
		return fileInfo.Entry{}, err
	}

	tmp, err := os.CreateTemp(filepath.Join(b.root, tmpDirName), "upload-*")
	if err != nil {
		return fileInfo.Entry{}, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fileInfo.Entry{}, err
	}
	if err := tmp.Close(); err != nil {
		return fileInfo.Entry{}, err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fileInfo.Entry{}, err
	}
	return b.entry(target, n), nil
}

func (b *LocalBackend) Get(ctx context.Context, ownerID int64, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := b.filePath(ownerID, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, name)
	}
	return data, err
}

func (b *LocalBackend) Delete(ctx context.Context, ownerID int64, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := b.filePath(ownerID, name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
