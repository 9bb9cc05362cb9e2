package handler

import (
	"net/http"
	"time"

	"filevault/internal/handler/authHandler"
	"filevault/internal/handler/fileHandler"
	"filevault/pkg/logger"
	"filevault/pkg/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	CORSOrigin     string
	TokenCookie    string
	RequestTimeout time.Duration
}

func NewRouter(
	cfg RouterConfig,
	log *logger.Logger,
	verifier middleware.TokenVerifier,
	auth *authHandler.AuthHandler,
	files *fileHandler.FileHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := middleware.Auth(verifier, cfg.TokenCookie)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", auth.Register)
		r.Post("/login", auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/UpdateName", auth.UpdateName)
			r.Post("/changePassword", auth.ChangePassword)
		})
	})

	r.Route("/file", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/upload", files.Upload)
		r.Get("/request", files.List)
		r.Delete("/delete", files.Delete)
		r.Post("/read_file", files.Read)
	})

	return r
}
