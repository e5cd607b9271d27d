// Package browserexport parses bookmark export files (the flat JSON
// format produced by bookmark manager exports) into bookmark records.
package browserexport

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/marklist/marklist/internal/domain"
)

// Parse extracts bookmarks from an export payload. The expected shape is
// {"bookmarks": [{"title": ..., "url": ...}, ...]}; entries without a URL
// are skipped and URLs are normalized like user input.
func Parse(userID string, data []byte) ([]*domain.BookmarkRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("export is not valid json")
	}

	entries := gjson.GetBytes(data, "bookmarks").Array()
	if len(entries) == 0 {
		return nil, fmt.Errorf("no bookmarks found in export")
	}

	now := time.Now()
	records := make([]*domain.BookmarkRecord, 0, len(entries))

	for _, item := range entries {
		rawURL := item.Get("url").String()
		if rawURL == "" {
			continue
		}

		url := domain.NormalizeURL(rawURL)
		title := item.Get("title").String()
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
		return nil, fmt.Errorf("no usable bookmarks found in export")
	}

	return records, nil
}
