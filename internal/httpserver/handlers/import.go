package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/marklist/marklist/internal/httpserver/deps"
	"github.com/marklist/marklist/internal/httpserver/mw"
	"github.com/marklist/marklist/internal/logger"
	"github.com/marklist/marklist/internal/sources/browserexport"
)

// maxImportBytes caps the accepted export payload.
const maxImportBytes = 10 << 20

type importResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// ImportBookmarks bulk-inserts a browser export for the session user.
// Inserts go straight through the store, so every imported bookmark is
// published on the feed and lands in live lists like any other insert.
func ImportBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		sess := mw.SessionFrom(r.Context())
		records, err := browserexport.Parse(sess.UserID, data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		inserted, skipped, err := d.Store.InsertMany(r.Context(), sess.UserID, records)
		if err != nil {
			d.Logger.Error("bookmark import failed",
				logger.String("user_id", sess.UserID),
				logger.Error(err))
			http.Error(w, "import failed", http.StatusInternalServerError)
			return
		}

		d.Logger.Info("bookmark import complete",
			logger.String("user_id", sess.UserID),
			logger.Int("inserted", inserted),
			logger.Int("skipped", skipped))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(importResponse{Inserted: inserted, Skipped: skipped})
	}
}
