package authService

import (
	"context"
	"errors"
	"fmt"

	"filevault/internal/apperrors"
	"filevault/internal/model/user"
	"filevault/pkg/logger"

	"go.uber.org/zap"
)

const maxUsernameLen = 255

var errBadCredentials = fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)

// UserRepository is implemented by userRepo.UserRepo and userRepo.BadgerRepo.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (int64, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	UpdateUsername(ctx context.Context, oldUsername, newUsername string) (*user.User, error)
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
}

// LoginLimiter throttles repeated failed logins for one username.
type LoginLimiter interface {
	Blocked(ctx context.Context, username string) (bool, error)
	RegisterFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type Session struct {
	Token    string
	Identity user.Identity
}

type AuthService struct {
	users   UserRepository
	hasher  Hasher
	tokens  *TokenCodec
	limiter LoginLimiter
	// compared against for unknown usernames so both failure paths cost a bcrypt run
	dummyHash string
}

// New builds the service. limiter may be nil to disable login throttling.
func New(users UserRepository, hasher Hasher, tokens *TokenCodec, limiter LoginLimiter) (*AuthService, error) {
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		limiter:   limiter,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", apperrors.ErrInvalidInput)
	}
	if len(username) > maxUsernameLen {
		return fmt.Errorf("%w: username is too long", apperrors.ErrInvalidInput)
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return fmt.Errorf("%w: username already exists", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return storeError("get user", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	// A concurrent register of the same name loses here with ErrConflict.
	if _, err := s.users.Create(ctx, username, hashed); err != nil {
		return storeError("create user", err)
	}

	logger.GetLogger(ctx).Info("user registered", zap.String("username", username))
	return nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperrors.ErrInvalidInput)
	}

	if s.limiter != nil {
		blocked, err := s.limiter.Blocked(ctx, username)
		if err != nil {
			logger.GetLogger(ctx).Warn("login throttle unavailable", zap.Error(err))
		} else if blocked {
			return nil, fmt.Errorf("%w: try again later", apperrors.ErrTooManyAttempts)
		}
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, storeError("get user", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		s.registerFailure(ctx, username)
		return nil, errBadCredentials
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		s.registerFailure(ctx, username)
		return nil, errBadCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			logger.GetLogger(ctx).Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	return s.newSession(u.Identity())
}

// ChangeUsername renames the caller's own record and returns a token for the
// new name.
func (s *AuthService) ChangeUsername(ctx context.Context, caller user.Identity, oldUsername, newUsername string) (*Session, error) {
	if oldUsername == "" || newUsername == "" {
		return nil, fmt.Errorf("%w: username and new username are required", apperrors.ErrInvalidInput)
	}
	if len(newUsername) > maxUsernameLen {
		return nil, fmt.Errorf("%w: username is too long", apperrors.ErrInvalidInput)
	}

	u, err := s.ownedUser(ctx, caller, oldUsername)
	if err != nil {
		return nil, err
	}
	if oldUsername == newUsername {
		return s.newSession(u.Identity())
	}

	if _, err := s.users.GetByUsername(ctx, newUsername); err == nil {
		return nil, fmt.Errorf("%w: username already exists", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, storeError("get user", err)
	}

	updated, err := s.users.UpdateUsername(ctx, oldUsername, newUsername)
	if err != nil {
		return nil, storeError("update username", err)
	}

	logger.GetLogger(ctx).Info("username changed",
		zap.Int64("user_id", updated.ID),
		zap.String("username", updated.Username),
	)
	return s.newSession(updated.Identity())
}

func (s *AuthService) ChangePassword(ctx context.Context, caller user.Identity, username, oldPassword, newPassword string) error {
	if username == "" || oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: username, old and new password are required", apperrors.ErrInvalidInput)
	}
	if len(newPassword) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	u, err := s.ownedUser(ctx, caller, username)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(oldPassword, u.PasswordHash) {
		return fmt.Errorf("%w: old password is incorrect", apperrors.ErrUnauthorized)
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, username, hashed); err != nil {
		return storeError("update password", err)
	}

	logger.GetLogger(ctx).Info("password changed", zap.Int64("user_id", u.ID))
	return nil
}

func (s *AuthService) VerifyToken(token string) (user.Identity, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) ownedUser(ctx context.Context, caller user.Identity, username string) (*user.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeError("get user", err)
	}
	if u.ID != caller.ID {
		return nil, fmt.Errorf("%w: account belongs to another user", apperrors.ErrUnauthorized)
	}
	return u, nil
}

func (s *AuthService) newSession(identity user.Identity) (*Session, error) {
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Identity: identity}, nil
}

func (s *AuthService) registerFailure(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RegisterFailure(ctx, username); err != nil {
		logger.GetLogger(ctx).Warn("failed to record login attempt", zap.Error(err))
	}
}

// storeError passes taxonomy errors through and marks everything else as a
// storage failure.
func storeError(op string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConflict) {
		return err
	}
	return apperrors.NewStorageError(op, err)
}
