package authService

import (
	"errors"
	"fmt"

	"filevault/internal/apperrors"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost = 10
	// bcrypt only reads the first 72 bytes of its input
	MaxPasswordBytes = 72
)

var ErrPasswordTooLong = fmt.Errorf("%w: password is too long", apperrors.ErrInvalidInput)

type BcryptHasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher. Costs outside bcrypt's range fall back
// to DefaultCost.
func NewHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify never returns an error; a malformed digest simply doesn't match.
func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
