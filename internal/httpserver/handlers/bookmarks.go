package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marklist/marklist/internal/httpserver/deps"
	"github.com/marklist/marklist/internal/httpserver/mw"
	"github.com/marklist/marklist/internal/logger"
)

type addBookmarkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ListBookmarks returns the session's reconciled list, most-recent-first.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := mw.SessionFrom(r.Context())
		s := d.Registry.Ensure(sess.UserID)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(s.Bookmarks())
	}
}

// AddBookmark performs an optimistic insert and answers immediately with
// the pending record; confirmation arrives over the event stream.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addBookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if req.URL == "" {
			http.Error(w, "url is required", http.StatusBadRequest)
			return
		}

		sess := mw.SessionFrom(r.Context())
		s := d.Registry.Ensure(sess.UserID)
		pending := s.Add(req.Title, req.URL)

		d.Logger.Info("bookmark add accepted",
			logger.String("user_id", sess.UserID),
			logger.String("url", pending.URL))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(pending)
	}
}

// DeleteBookmark performs an optimistic delete and answers immediately.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid bookmark id", http.StatusBadRequest)
			return
		}

		sess := mw.SessionFrom(r.Context())
		s := d.Registry.Ensure(sess.UserID)
		s.Delete(id)

		d.Logger.Info("bookmark delete accepted",
			logger.String("user_id", sess.UserID),
			logger.Int64("id", id))

		w.WriteHeader(http.StatusAccepted)
	}
}
