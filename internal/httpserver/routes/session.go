package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/marklist/marklist/internal/httpserver/deps"
	"github.com/marklist/marklist/internal/httpserver/handlers"
	"github.com/marklist/marklist/internal/httpserver/mw"
)

func init() { Register(registerSession) }

func registerSession(r chi.Router, d deps.Deps) {
	r.Post("/api/session", handlers.SignIn(d))

	auth := r.With(mw.RequireSession(d.Sessions, d.Logger))
	auth.Get("/api/session", handlers.CurrentSession(d))
	auth.Delete("/api/session", handlers.SignOut(d))
}
