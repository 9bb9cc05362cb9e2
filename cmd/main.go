package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filevault/internal/config"
	"filevault/internal/handler"
	"filevault/internal/handler/authHandler"
	"filevault/internal/handler/fileHandler"
	"filevault/internal/repository/loginAttempts"
	"filevault/internal/repository/userRepo"
	"filevault/internal/service/authService"
	"filevault/internal/service/fileService"
	"filevault/internal/storage"
	"filevault/pkg/database/postgres"
	"filevault/pkg/database/redis"
	"filevault/pkg/health"
	"filevault/pkg/logger"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		// no configured logger yet
		bootstrap, _ := logger.New(ctx, "info")
		logger.GetLogger(bootstrap).Fatal("Failed to load config", zap.Error(err))
	}

	ctx, err = logger.New(ctx, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.GetLogger(ctx)
	defer log.Sync()

	users, closeUsers := openUserStore(ctx, cfg)
	defer closeUsers()

	var limiter authService.LoginLimiter
	if cfg.Throttle.Enabled {
		redisClient, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, login throttle will fail open", zap.Error(err))
		}
		defer redisClient.Close()
		limiter = loginAttempts.New(redisClient, cfg.Throttle.MaxAttempts, cfg.Throttle.Window)
	}

	backend, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("Failed to init storage backend", zap.Error(err))
	}

	tokens := authService.NewTokenCodec(cfg.JWTSecret)
	authSvc, err := authService.New(users, authService.NewHasher(cfg.BcryptCost), tokens, limiter)
	if err != nil {
		log.Fatal("Failed to init auth service", zap.Error(err))
	}
	fileSvc := fileService.New(backend)

	router := handler.NewRouter(
		handler.RouterConfig{
			CORSOrigin:     cfg.CORSOrigin,
			TokenCookie:    cfg.TokenCookie,
			RequestTimeout: cfg.RequestTimeout,
		},
		log,
		authSvc,
		authHandler.New(authSvc),
		fileHandler.NewFileHandler(fileSvc, cfg.MaxUploadBytes),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	healthSrv := health.New()
	lis, err := net.Listen("tcp", ":"+cfg.HealthPort)
	if err != nil {
		log.Fatal("Failed to listen for health probes", zap.Error(err))
	}
	go func() {
		if err := healthSrv.Serve(lis); err != nil {
			log.Error("health server stopped", zap.Error(err))
		}
	}()

	go func() {
		log.Info("server started",
			zap.String("port", cfg.HTTPPort),
			zap.String("credential_store", cfg.CredentialStore),
			zap.String("storage_backend", backend.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()
	healthSrv.SetServing(true)

	<-ctx.Done()

	healthSrv.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	healthSrv.Stop()
	log.Info("server stopped")
}

// openUserStore connects the configured credential store and returns it with
// its release function.
func openUserStore(ctx context.Context, cfg *config.Config) (authService.UserRepository, func()) {
	log := logger.GetLogger(ctx)

	switch cfg.CredentialStore {
	case "badger":
		repo, err := userRepo.OpenBadger(cfg.BadgerPath)
		if err != nil {
			log.Fatal("Failed to open badger store", zap.Error(err))
		}
		return repo, closer(ctx, repo)
	default:
		pool, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		return userRepo.New(pool), pool.Close
	}
}

func closer(ctx context.Context, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.GetLogger(ctx).Warn("close credential store", zap.Error(err))
		}
	}
}
