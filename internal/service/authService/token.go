package authService

import (
	"errors"
	"fmt"
	"time"

	"filevault/internal/apperrors"
	"filevault/internal/model/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TokenLifetime = time.Hour

var (
	ErrTokenInvalid = fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	ErrTokenExpired = fmt.Errorf("%w: token expired", apperrors.ErrUnauthorized)
)

type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 tokens carrying a user.Identity.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the codec's time source.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	return &TokenCodec{secret: c.secret, now: now}
}

func (c *TokenCodec) Issue(identity user.Identity) (string, error) {
	now := c.now()
	claims := Claims{
		ID:       identity.ID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenStr, nil
}

func (c *TokenCodec) Verify(tokenStr string) (user.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return user.Identity{}, ErrTokenExpired
		}
		return user.Identity{}, ErrTokenInvalid
	}
	if !parsed.Valid || claims.ID <= 0 || claims.Username == "" {
		return user.Identity{}, ErrTokenInvalid
	}
	return user.Identity{ID: claims.ID, Username: claims.Username}, nil
}
