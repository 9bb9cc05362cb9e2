package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"filevault/internal/model/user"
	"filevault/pkg/middleware"

	"github.com/stretchr/testify/assert"
)

type stubVerifier map[string]user.Identity

func (s stubVerifier) VerifyToken(token string) (user.Identity, error) {
	id, ok := s[token]
	if !ok {
		return user.Identity{}, errors.New("invalid token")
	}
	return id, nil
}

func protected(t *testing.T) http.Handler {
	verifier := stubVerifier{"good": {ID: 7, Username: "alice"}}
	return middleware.Auth(verifier, "__Session__")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, int64(7), id.ID)
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{
			name:     "no token",
			prepare:  func(r *http.Request) {},
			wantCode: http.StatusUnauthorized,
			wantBody: "No token provided",
		},
		{
			name:     "header",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			wantCode: http.StatusNoContent,
		},
		{
			name:     "invalid header token",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") },
			wantCode: http.StatusUnauthorized,
			wantBody: "Invalid token",
		},
		{
			name:     "header without scheme",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "good") },
			wantCode: http.StatusUnauthorized,
			wantBody: "No token provided",
		},
		{
			name: "raw cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "__Session__", Value: "Bearer good"})
			},
			wantCode: http.StatusNoContent,
		},
		{
			name: "escaped cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "__Session__", Value: url.QueryEscape("Bearer good")})
			},
			wantCode: http.StatusNoContent,
		},
		{
			name: "other cookie",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "session", Value: "Bearer good"})
			},
			wantCode: http.StatusUnauthorized,
			wantBody: "No token provided",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/file/request", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			protected(t).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
