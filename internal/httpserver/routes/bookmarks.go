package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/marklist/marklist/internal/httpserver/deps"
	"github.com/marklist/marklist/internal/httpserver/handlers"
	"github.com/marklist/marklist/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	auth := r.With(mw.RequireSession(d.Sessions, d.Logger))

	auth.Get("/api/bookmarks", handlers.ListBookmarks(d))
	auth.Post("/api/bookmarks", handlers.AddBookmark(d))
	auth.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
	auth.Get("/api/bookmarks/stream", handlers.StreamBookmarks(d))
	auth.Post("/api/bookmarks/import", handlers.ImportBookmarks(d))
	auth.Post("/api/resync", handlers.Resync(d))
}
