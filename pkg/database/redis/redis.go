package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host        string        `env:"REDIS_HOST" env-default:"localhost"`
	Port        string        `env:"REDIS_PORT" env-default:"6379"`
	Password    string        `env:"REDIS_PASSWORD" env-default:""`
	Db          int           `env:"REDIS_DB" env-default:"0"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" env-default:"2s"`
}

func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func New(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.Db,
		DialTimeout: cfg.DialTimeout,
	})
}

// Connect is New followed by a PING. The client is returned even when the
// ping fails so callers may choose to continue without Redis.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := New(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("redis %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
