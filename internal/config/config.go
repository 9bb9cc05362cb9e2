package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"filevault/internal/storage"
	"filevault/pkg/database/postgres"
	"filevault/pkg/database/redis"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

const defaultPath = "./config/local.env"

type Config struct {
	HTTPPort       string        `env:"HTTP_PORT" env-default:"3000" validate:"required"`
	HealthPort     string        `env:"GRPC_HEALTH_PORT" env-default:"50051" validate:"required"`
	JWTSecret      string        `env:"JWT_TOKEN" validate:"required,min=16"`
	BcryptCost     int           `env:"BCRYPT_COST" env-default:"10" validate:"min=4,max=31"`
	LogLevel       string        `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	CORSOrigin     string        `env:"CORS_ORIGIN" env-default:"http://localhost:5173" validate:"required"`
	TokenCookie    string        `env:"TOKEN_COOKIE" env-default:"__Session__"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"30s" validate:"gt=0"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" env-default:"104857600" validate:"gt=0"`

	CredentialStore string `env:"CREDENTIAL_STORE" env-default:"postgres" validate:"oneof=postgres badger"`
	BadgerPath      string `env:"BADGER_PATH" env-default:"data/users"`
	Postgres        postgres.Config
	Redis           redis.RedisConfig

	Throttle ThrottleConfig
	Storage  storage.Config
}

type ThrottleConfig struct {
	Enabled     bool          `env:"LOGIN_THROTTLE_ENABLED" env-default:"true"`
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" env-default:"5" validate:"min=1"`
	Window      time.Duration `env:"LOGIN_LOCKOUT_WINDOW" env-default:"15m" validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New reads the env file at CONFIG_PATH (default ./config/local.env).
// Variables already set in the environment take precedence over the file.
func New() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultPath
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	switch cfg.Storage.Backend {
	case "minio":
		if cfg.Storage.MinIO.Endpoint == "" || cfg.Storage.MinIO.Bucket == "" {
			return errors.New("storage: minio backend needs MINIO_ENDPOINT and MINIO_BUCKET_NAME")
		}
	case "s3":
		if cfg.Storage.S3.Bucket == "" {
			return errors.New("storage: s3 backend needs S3_BUCKET")
		}
	}
	if cfg.CredentialStore == "badger" && cfg.BadgerPath == "" {
		return errors.New("credential store: badger needs BADGER_PATH")
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag", e.Namespace(), e.Tag())
	}
	return err
}
