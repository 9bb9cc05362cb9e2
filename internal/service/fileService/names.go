package fileService

import (
	"fmt"
	"strings"
	"unicode"

	"filevault/internal/apperrors"
)

const maxNameLen = 255

// ValidateName accepts only plain file names: no path separators, no dot
// entries, no control characters.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: file name is empty", apperrors.ErrInvalidInput)
	case name == "." || name == "..":
		return fmt.Errorf("%w: invalid file name %q", apperrors.ErrInvalidInput, name)
	case len(name) > maxNameLen:
		return fmt.Errorf("%w: file name is too long", apperrors.ErrInvalidInput)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: file name must not contain path separators", apperrors.ErrInvalidInput)
	}
	for _, r := range name {
		if r == 0 || unicode.IsControl(r) {
			return fmt.Errorf("%w: file name contains control characters", apperrors.ErrInvalidInput)
		}
	}
	return nil
}
