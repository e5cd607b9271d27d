package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/marklist/marklist/internal/httpserver/deps"
	"github.com/marklist/marklist/internal/httpserver/mw"
	"github.com/marklist/marklist/internal/logger"
	"github.com/marklist/marklist/internal/session"
)

// Headers the OAuth reverse proxy injects after completing the external
// flow. The proxy is the identity provider boundary; this service only
// trusts what it forwards.
const (
	authUserHeader     = "X-Auth-Request-User"
	authProviderHeader = "X-Auth-Request-Provider"
)

type sessionResponse struct {
	Token   string           `json:"token,omitempty"`
	Session *session.Session `json:"session"`
}

// SignIn finishes a sign-in: the external OAuth flow already ran at the
// reverse proxy, which forwards the authenticated subject in a trusted
// header. A session row is created and its bearer token returned.
func SignIn(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(authUserHeader)
		if userID == "" {
			http.Error(w, "not authenticated by the oauth proxy", http.StatusUnauthorized)
			return
		}
		provider := r.Header.Get(authProviderHeader)
		if provider == "" {
			provider = "oauth"
		}

		token, sess, err := d.Sessions.SignIn(r.Context(), provider, userID)
		if err != nil {
			d.Logger.Error("sign-in failed",
				logger.String("user_id", userID),
				logger.Error(err))
			http.Error(w, "sign-in failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sessionResponse{Token: token, Session: sess})
	}
}

// CurrentSession returns the authenticated session.
func CurrentSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sessionResponse{Session: mw.SessionFrom(r.Context())})
	}
}

// SignOut ends the session. The session-change notification downstream
// stops the user's synchronizer.
func SignOut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Sessions.SignOut(r.Context(), mw.BearerToken(r)); err != nil {
			d.Logger.Error("sign-out failed", logger.Error(err))
			http.Error(w, "sign-out failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
