package fileService_test

import (
	"errors"
	"strings"
	"testing"

	"filevault/internal/apperrors"
	"filevault/internal/service/fileService"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"plain", "a.txt", true},
		{"dotfile", ".env", true},
		{"spaces and unicode", "отчёт 2024.pdf", true},
		{"max length", strings.Repeat("a", 255), true},
		{"empty", "", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"slash", "a/b", false},
		{"traversal", "../etc/passwd", false},
		{"backslash", `a\b`, false},
		{"nul", "a\x00b", false},
		{"newline", "a\nb", false},
		{"too long", strings.Repeat("a", 256), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fileService.ValidateName(tt.input)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}
