package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"filevault/internal/model/user"
	"filevault/pkg/httpx"
	"filevault/pkg/logger"

	"go.uber.org/zap"
)

type identityKey struct{}

// TokenVerifier turns a bearer token into the identity it was issued for.
type TokenVerifier interface {
	VerifyToken(token string) (user.Identity, error)
}

// Auth rejects requests without a valid bearer token. The token is read from
// the Authorization header, or from cookieName whose value has the same
// "Bearer <token>" form.
func Auth(verifier TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r, cookieName)
			if token == "" {
				httpx.WriteMessage(w, http.StatusUnauthorized, "No token provided")
				return
			}

			identity, err := verifier.VerifyToken(token)
			if err != nil {
				logger.GetLogger(r.Context()).Debug("token rejected", zap.Error(err))
				httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			ctx = logger.WithLogger(ctx, logger.GetLogger(ctx).With(zap.Int64("user_id", identity.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithIdentity(ctx context.Context, identity user.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (user.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(user.Identity)
	return identity, ok
}

func bearerToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return stripBearer(h)
	}
	if cookieName == "" {
		return ""
	}
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	value := c.Value
	if unescaped, err := url.QueryUnescape(value); err == nil {
		value = unescaped
	}
	return stripBearer(value)
}

func stripBearer(v string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(v), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
