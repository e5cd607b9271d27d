package seedfile

import (
	"fmt"
	"time"

	"github.com/marklist/marklist/internal/domain"
)

// Mapper converts seed config entries to bookmark records.
type Mapper struct{}

// NewMapper creates a new mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map converts a SeedConfig to bookmark records for the given user.
// Entries without a URL are skipped; entries without a title fall back to
// the URL. URLs are normalized the same way user input is.
func (m *Mapper) Map(userID string, config SeedConfig) ([]*domain.BookmarkRecord, error) {
	records := make([]*domain.BookmarkRecord, 0, len(config))
	now := time.Now()

	for _, entry := range config {
		if entry.URL == "" {
			continue
		}

		url := domain.NormalizeURL(entry.URL)
		title := entry.Title
		if title == "" {
			title = url
		}

		records = append(records, &domain.BookmarkRecord{
			UserID:    userID,
			Title:     title,
			URL:       url,
			CreatedAt: now,
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no valid bookmarks found in seed file")
	}

	return records, nil
}
