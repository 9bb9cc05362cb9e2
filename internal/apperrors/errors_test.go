package apperrors_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"filevault/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestStorageError(t *testing.T) {
	err := apperrors.NewStorageError("upload", fs.ErrPermission)

	assert.True(t, errors.Is(err, apperrors.ErrStorage))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.False(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "storage upload: permission denied", err.Error())

	wrapped := fmt.Errorf("list files: %w", err)
	var se *apperrors.StorageError
	assert.True(t, errors.As(wrapped, &se))
	assert.Equal(t, "upload", se.Op)
}

func TestSentinelWrapping(t *testing.T) {
	err := fmt.Errorf("%w: username is required", apperrors.ErrInvalidInput)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, "invalid input: username is required", err.Error())
}
