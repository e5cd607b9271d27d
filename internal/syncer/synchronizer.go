// Package syncer maintains one live, reconciled bookmark list per
// authenticated session. The list is mutated by three concurrent sources:
// optimistic local edits, write-completion callbacks, and realtime push
// events authored by any session. Merge rules are idempotent, so the list
// converges regardless of how those interleave.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marklist/marklist/internal/domain"
	"github.com/marklist/marklist/internal/feed"
	"github.com/marklist/marklist/internal/list"
	"github.com/marklist/marklist/internal/logger"
	redisstore "github.com/marklist/marklist/internal/store/redis"
)

// resubscribeWait is the pause before re-establishing a lost feed
// subscription.
const resubscribeWait = 2 * time.Second

// noticeBuffer bounds undelivered user-facing failure notices.
const noticeBuffer = 16

// Store is the collection interface the synchronizer writes through.
type Store interface {
	SelectAll(ctx context.Context, userID string) ([]*domain.BookmarkRecord, error)
	Insert(ctx context.Context, userID, title, url string) error
	DeleteByID(ctx context.Context, userID string, id int64) error
}

// Notice is a user-facing failure notification. For insert failures Title
// and URL carry the original input values so the caller can restore its
// input fields.
type Notice struct {
	Op      string `json:"op"` // "insert" | "delete"
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Synchronizer owns the authoritative in-memory list for one user session
// and exactly one feed subscription at a time.
type Synchronizer struct {
	userID string
	store  Store
	feed   feed.Feed
	list   *list.List
	logger logger.Logger

	// runCtx is handed in at construction and never reassigned: Add and
	// Delete read it from their write goroutines while Run starts up. It
	// outlives individual requests so an optimistic write is not cancelled
	// when its originating request finishes.
	runCtx context.Context

	notices chan Notice

	mu          sync.Mutex
	watchers    map[int]chan struct{}
	nextWatcher int
	closed      bool
}

// New creates a synchronizer for the given user. ctx scopes the
// synchronizer's lifetime: Run and every asynchronous write stop when it
// is cancelled.
func New(ctx context.Context, userID string, store Store, f feed.Feed, log logger.Logger) *Synchronizer {
	return &Synchronizer{
		userID:   userID,
		store:    store,
		feed:     f,
		list:     list.New(),
		logger:   log,
		runCtx:   ctx,
		notices:  make(chan Notice, noticeBuffer),
		watchers: make(map[int]chan struct{}),
	}
}

// Run establishes the realtime subscription and applies events until the
// construction context is cancelled. After every (re)subscribe the full
// list is refetched, so the initial load and the resync-after-reconnect
// policy are the same code path. Never more than one subscription is live
// at a time.
func (s *Synchronizer) Run() {
	ctx := s.runCtx

	for {
		sub, err := s.feed.Subscribe(ctx, s.userID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("feed subscribe failed, retrying",
				logger.String("user_id", s.userID),
				logger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(resubscribeWait):
			}
			continue
		}

		// Subscribe before fetching so no event published during the
		// fetch is missed; Confirm/Remove are idempotent against the
		// overlap.
		if err := s.Resync(ctx); err != nil {
			s.logger.Warn("initial list fetch failed",
				logger.String("user_id", s.userID),
				logger.Error(err))
		}

		for event := range sub.Events() {
			s.apply(event)
		}
		_ = sub.Close()

		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("feed subscription lost, reconnecting",
			logger.String("user_id", s.userID))
	}
}

// Add performs an optimistic insert: the pending record is visible
// immediately and the write happens asynchronously. On write failure the
// pending record is rolled back and a notice carrying the original input
// values is surfaced. On success nothing further happens here; the insert
// confirmation arrives through the feed.
func (s *Synchronizer) Add(title, rawURL string) *domain.BookmarkRecord {
	url := domain.NormalizeURL(rawURL)
	pending := domain.NewPending(s.userID, title, url)

	s.list.Prepend(pending)
	s.notifyWatchers()

	go func() {
		if err := s.store.Insert(s.runCtx, s.userID, title, url); err != nil {
			s.logger.Warn("bookmark insert failed, rolling back",
				logger.String("user_id", s.userID),
				logger.String("url", url),
				logger.Error(err))
			s.list.Remove(pending.ID)
			s.pushNotice(Notice{
				Op:      "insert",
				Message: "could not save bookmark",
				Title:   title,
				URL:     rawURL,
			})
			s.notifyWatchers()
		}
	}()

	return pending
}

// Delete performs an optimistic delete: the record disappears immediately
// and the write happens asynchronously. On write failure a notice is
// surfaced and the full authoritative list is refetched rather than
// attempting a partial undo.
func (s *Synchronizer) Delete(id int64) {
	s.list.Remove(id)
	s.notifyWatchers()

	go func() {
		err := s.store.DeleteByID(s.runCtx, s.userID, id)
		if err == nil {
			return
		}
		if errors.Is(err, redisstore.ErrNotFound) {
			// Another session deleted it first; state already converged.
			s.logger.Debug("delete target already gone",
				logger.String("user_id", s.userID),
				logger.Int64("id", id))
			return
		}

		s.logger.Warn("bookmark delete failed, resyncing",
			logger.String("user_id", s.userID),
			logger.Int64("id", id),
			logger.Error(err))
		s.pushNotice(Notice{
			Op:      "delete",
			Message: "could not delete bookmark",
		})
		if err := s.Resync(s.runCtx); err != nil {
			s.logger.Error("resync after failed delete failed",
				logger.String("user_id", s.userID),
				logger.Error(err))
		}
	}()
}

// Resync replaces the list with the store's authoritative contents.
func (s *Synchronizer) Resync(ctx context.Context) error {
	records, err := s.store.SelectAll(ctx, s.userID)
	if err != nil {
		return err
	}
	s.list.ReplaceAll(records)
	s.notifyWatchers()
	return nil
}

// Bookmarks returns a snapshot of the reconciled list, most-recent-first.
func (s *Synchronizer) Bookmarks() []*domain.BookmarkRecord {
	return s.list.Snapshot()
}

// HasPending reports whether any optimistic record still awaits its store
// confirmation.
func (s *Synchronizer) HasPending() bool {
	return s.list.HasPending()
}

// Notices returns the stream of user-facing failure notifications.
func (s *Synchronizer) Notices() <-chan Notice {
	return s.notices
}

// Watch registers a listener signalled (coalesced) on every list change.
// The returned cancel func releases the listener. The channel is closed
// when the synchronizer shuts down; after that Watch hands out channels
// that are already closed.
func (s *Synchronizer) Watch() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		ch := make(chan struct{})
		close(ch)
		return ch, func() {}
	}

	id := s.nextWatcher
	s.nextWatcher++
	ch := make(chan struct{}, 1)
	s.watchers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

func (s *Synchronizer) apply(event domain.ChangeEvent) {
	switch event.Type {
	case domain.EventInsert:
		if event.NewRow == nil {
			return
		}
		s.list.Confirm(event.NewRow)
	case domain.EventDelete:
		if event.OldRow == nil {
			// Without the prior row the delete carries nothing to match
			// against; the periodic resync repairs any divergence.
			s.logger.Debug("delete event without prior row",
				logger.String("user_id", s.userID))
			return
		}
		s.list.Remove(event.OldRow.ID)
	default:
		// Update and anything unknown is ignored.
		return
	}
	s.notifyWatchers()
}

func (s *Synchronizer) pushNotice(n Notice) {
	select {
	case s.notices <- n:
	default:
		s.logger.Warn("notice dropped, buffer full",
			logger.String("user_id", s.userID))
	}
}

// shutdown closes every watcher channel so open streams observe the end
// of this synchronizer instead of waiting on one that will never change
// again.
func (s *Synchronizer) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.watchers {
		close(ch)
	}
	s.watchers = nil
}

func (s *Synchronizer) notifyWatchers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
