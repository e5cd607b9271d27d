// Package redis implements the bookmark collection store. Rows live as
// JSON values with a per-user sorted set for ordering; every write
// publishes a change event on the owner's feed channel, delete events
// carrying the full prior row so subscribers can match them by id.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marklist/marklist/internal/domain"
	"github.com/marklist/marklist/internal/feed"
)

// ErrNotFound is returned when a bookmark does not exist.
var ErrNotFound = errors.New("bookmark not found")

// Store handles Redis operations for bookmarks and sessions.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SelectAll retrieves all of a user's bookmarks, most-recent-first.
func (s *Store) SelectAll(ctx context.Context, userID string) ([]*domain.BookmarkRecord, error) {
	ids, err := s.client.ZRevRange(ctx, UserBookmarksKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmark ids: %w", err)
	}

	records := make([]*domain.BookmarkRecord, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, KeyPrefixBookmark+id).Bytes()
		if err != nil {
			// Skip rows that vanished between the range and the get.
			continue
		}

		var rec domain.BookmarkRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, &rec)
	}

	return records, nil
}

// Insert durably stores a new bookmark and publishes the insert event.
// The caller does not receive the new id; reconciliation happens through
// the feed.
func (s *Store) Insert(ctx context.Context, userID, title, url string) error {
	_, err := s.insert(ctx, userID, title, url)
	return err
}

func (s *Store) insert(ctx context.Context, userID, title, url string) (*domain.BookmarkRecord, error) {
	id, err := s.client.Incr(ctx, SeqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate bookmark id: %w", err)
	}

	rec := &domain.BookmarkRecord{
		ID:        id,
		UserID:    userID,
		Title:     title,
		URL:       url,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, BookmarkKey(id), data, 0)
	pipe.ZAdd(ctx, UserBookmarksKey(userID), redis.Z{
		Score:  float64(rec.CreatedAt.UnixNano()),
		Member: id,
	})
	pipe.SAdd(ctx, UserURLsKey(userID), url)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to save bookmark: %w", err)
	}

	s.publish(ctx, userID, domain.ChangeEvent{
		Type:   domain.EventInsert,
		NewRow: rec,
	})

	return rec, nil
}

// DeleteByID removes a bookmark and publishes the delete event with the
// full prior row.
func (s *Store) DeleteByID(ctx context.Context, userID string, id int64) error {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get bookmark: %w", err)
	}

	var rec domain.BookmarkRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	if rec.UserID != userID {
		return ErrNotFound
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, BookmarkKey(id))
	pipe.ZRem(ctx, UserBookmarksKey(userID), id)
	pipe.SRem(ctx, UserURLsKey(userID), rec.URL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	s.publish(ctx, userID, domain.ChangeEvent{
		Type:   domain.EventDelete,
		OldRow: &rec,
	})

	return nil
}

// HasURL reports whether the user already has a bookmark with this URL.
func (s *Store) HasURL(ctx context.Context, userID, url string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, UserURLsKey(userID), url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check url membership: %w", err)
	}
	return ok, nil
}

// InsertMany stores bookmarks in bulk, skipping URLs the user already has.
// Returns how many were inserted and how many were skipped as duplicates.
func (s *Store) InsertMany(ctx context.Context, userID string, records []*domain.BookmarkRecord) (inserted, skipped int, err error) {
	for _, rec := range records {
		exists, err := s.HasURL(ctx, userID, rec.URL)
		if err != nil {
			return inserted, skipped, err
		}
		if exists {
			skipped++
			continue
		}
		if _, err := s.insert(ctx, userID, rec.Title, rec.URL); err != nil {
			return inserted, skipped, err
		}
		inserted++
	}
	return inserted, skipped, nil
}

// publish sends a change event on the user's feed channel. Best effort: a
// subscriber that misses an event recovers via the periodic resync.
func (s *Store) publish(ctx context.Context, userID string, event domain.ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = s.client.Publish(ctx, feed.Channel(userID), payload).Err()
}
