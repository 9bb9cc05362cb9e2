package userRepo

import (
	"context"
	"errors"
	"fmt"

	"filevault/internal/apperrors"
	"filevault/internal/model/user"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DBTX is the part of pgxpool.Pool (and pgx.Tx) the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepo is the PostgreSQL credential store. Username uniqueness is
// enforced by the users_username_key constraint.
type UserRepo struct {
	db DBTX
}

func New(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`
	var userID int64
	err := r.db.QueryRow(ctx, query, username, passwordHash).Scan(&userID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: username already exists", apperrors.ErrConflict)
		}
		return 0, fmt.Errorf("failed to insert user and retrieve id: %w", err)
	}
	return userID, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT id, username, password_hash FROM users WHERE username = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, username))
}

func (r *UserRepo) UpdateUsername(ctx context.Context, oldUsername, newUsername string) (*user.User, error) {
	query := `UPDATE users SET username = $2 WHERE username = $1 RETURNING id, username, password_hash`
	u, err := r.scanOne(r.db.QueryRow(ctx, query, oldUsername, newUsername))
	if err != nil && isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: username already exists", apperrors.ErrConflict)
	}
	return u, err
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE username = $1`
	tag, err := r.db.Exec(ctx, query, username, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %q", apperrors.ErrNotFound, username)
	}
	return nil
}

func (r *UserRepo) scanOne(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
