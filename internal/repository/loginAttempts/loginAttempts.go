package loginAttempts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttemptsRepo counts failed logins per username in a fixed window.
// The window starts at the first failure and is not extended by later ones.
type LoginAttemptsRepo struct {
	Client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func New(client *redis.Client, maxAttempts int, window time.Duration) *LoginAttemptsRepo {
	return &LoginAttemptsRepo{
		Client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func (r *LoginAttemptsRepo) buildKey(username string) string {
	return fmt.Sprintf("login_attempts:%s", username)
}

// Blocked reports whether username has used up its failed attempts.
func (r *LoginAttemptsRepo) Blocked(ctx context.Context, username string) (bool, error) {
	n, err := r.Client.Get(ctx, r.buildKey(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= r.maxAttempts, nil
}

// RegisterFailure creates the counter with its TTL and increments it in one
// MULTI/EXEC, so a counter never exists without an expiry.
func (r *LoginAttemptsRepo) RegisterFailure(ctx context.Context, username string) error {
	key := r.buildKey(username)
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, r.window)
		pipe.Incr(ctx, key)
		return nil
	})
	return err
}

func (r *LoginAttemptsRepo) Reset(ctx context.Context, username string) error {
	return r.Client.Del(ctx, r.buildKey(username)).Err()
}
