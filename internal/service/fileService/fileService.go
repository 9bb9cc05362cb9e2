package fileService

import (
	"context"
	"errors"
	"fmt"

	"filevault/internal/apperrors"
	"filevault/internal/model/fileInfo"
	"filevault/internal/storage"
	"filevault/pkg/logger"

	"go.uber.org/zap"
)

// FileService confines every operation to the namespace of the owner id it is
// given. Callers take the owner id from a verified token, never from input.
type FileService struct {
	backend storage.Backend
}

func New(backend storage.Backend) *FileService {
	return &FileService{backend: backend}
}

func (s *FileService) List(ctx context.Context, ownerID int64) ([]fileInfo.Entry, error) {
	entries, err := s.backend.List(ctx, ownerID)
	if err != nil {
		return nil, backendError("list", err)
	}
	return entries, nil
}

// Upload validates every name before writing anything, then stores the files
// in order. A file with an existing name replaces it.
func (s *FileService) Upload(ctx context.Context, ownerID int64, files []fileInfo.Upload) ([]fileInfo.Entry, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", apperrors.ErrInvalidInput)
	}
	for _, f := range files {
		if err := ValidateName(f.Name); err != nil {
			return nil, err
		}
	}

	if err := s.backend.EnsureNamespace(ctx, ownerID); err != nil {
		return nil, backendError("ensure namespace", err)
	}

	stored := make([]fileInfo.Entry, 0, len(files))
	for _, f := range files {
		entry, err := s.backend.Put(ctx, ownerID, f.Name, f.Content, f.Size)
		if err != nil {
			return nil, backendError("put", err)
		}
		stored = append(stored, entry)
	}

	logger.GetLogger(ctx).Info("files uploaded",
		zap.Int64("owner_id", ownerID),
		zap.Int("count", len(stored)),
		zap.String("backend", s.backend.Name()),
	)
	return stored, nil
}

// Read returns the content of name only if it is listed in the owner's
// namespace.
func (s *FileService) Read(ctx context.Context, ownerID int64, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	entries, err := s.backend.List(ctx, ownerID)
	if err != nil {
		return nil, backendError("list", err)
	}
	found := false
	for _, e := range entries {
		if e.Name == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: file %q", apperrors.ErrNotFound, name)
	}

	data, err := s.backend.Get(ctx, ownerID, name)
	if err != nil {
		return nil, backendError("get", err)
	}
	return data, nil
}

// Delete removes the named files. Names that don't exist are skipped.
func (s *FileService) Delete(ctx context.Context, ownerID int64, names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: no files selected", apperrors.ErrInvalidInput)
	}
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
	}

	for _, name := range names {
		if err := s.backend.Delete(ctx, ownerID, name); err != nil {
			return backendError("delete", err)
		}
	}

	logger.GetLogger(ctx).Info("files deleted",
		zap.Int64("owner_id", ownerID),
		zap.Strings("names", names),
	)
	return nil
}

func backendError(op string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidInput) {
		return err
	}
	return apperrors.NewStorageError(op, err)
}
