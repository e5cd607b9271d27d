package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/marklist/marklist/internal/logger"
	"github.com/marklist/marklist/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// RequireSession resolves the bearer token to a live session and stores it
// in the request context. Requests without a valid session get a 401.
func RequireSession(sessions *session.Manager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			sess, err := sessions.Current(r.Context(), token)
			if err != nil {
				log.Debug("rejected request without live session",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				http.Error(w, "no active session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session RequireSession stored in the context.
func SessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(r *http.Request) string {
	return bearerToken(r)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
