package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gradebook/internal/auth"
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/logging"
)

// TokenVerifier checks a session token and returns its username.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// FailFunc writes the response for a rejected request.
type FailFunc func(w http.ResponseWriter, r *http.Request, err error)

// BearerAuth validates the "Authorization: Bearer <token>" header.
// When required is false a valid token still identifies the user, but a
// missing one is allowed. A present but invalid token is always rejected.
func BearerAuth(v TokenVerifier, required bool, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || v == nil {
				if required {
					logging.FromContext(r.Context()).Warn("auth: missing bearer token",
						"path", r.URL.Path,
						"method", r.Method,
						"remote_addr", r.RemoteAddr,
					)
					fail(w, r, auth.ErrInvalidToken)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			username, err := v.Verify(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("auth: invalid bearer token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				if !errors.Is(err, auth.ErrInvalidToken) {
					err = errors.Join(auth.ErrInvalidToken, err)
				}
				fail(w, r, err)
				return
			}

			ctx := logging.WithUser(r.Context(), username)
			ctx = core.ContextWithActor(ctx, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
