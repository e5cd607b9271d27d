package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/marklist/marklist/internal/domain"
	"github.com/marklist/marklist/internal/feed"
	"github.com/marklist/marklist/internal/logger"
	"github.com/marklist/marklist/internal/syncer"
)

type countingStore struct {
	mu      sync.Mutex
	selects int
}

func (c *countingStore) SelectAll(ctx context.Context, userID string) ([]*domain.BookmarkRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selects++
	return nil, nil
}

func (c *countingStore) Insert(ctx context.Context, userID, title, url string) error { return nil }

func (c *countingStore) DeleteByID(ctx context.Context, userID string, id int64) error { return nil }

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selects
}

type idleFeed struct{}

type idleSubscription struct {
	events chan domain.ChangeEvent
}

func (s *idleSubscription) Events() <-chan domain.ChangeEvent { return s.events }
func (s *idleSubscription) Close() error                      { return nil }

func (idleFeed) Subscribe(ctx context.Context, userID string) (feed.Subscription, error) {
	sub := &idleSubscription{events: make(chan domain.ChangeEvent)}
	go func() {
		<-ctx.Done()
		close(sub.events)
	}()
	return sub, nil
}

func TestManualTriggerResyncsAllSessions(t *testing.T) {
	store := &countingStore{}
	registry := syncer.NewRegistry(store, idleFeed{}, logger.Noop())
	defer registry.Close()

	registry.Ensure("user-1")
	registry.Ensure("user-2")

	// Let the Run loops perform their initial fetches first.
	deadline := time.Now().Add(time.Second)
	for store.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	base := store.count()

	trigger := make(chan struct{}, 1)
	r := NewResyncer(registry, logger.Noop(), time.Hour, trigger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	trigger <- struct{}{}

	deadline = time.Now().Add(time.Second)
	for store.count() < base+2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := store.count(); got < base+2 {
		t.Errorf("manual trigger resynced %d sessions, want 2", got-base)
	}
}

func TestResyncAllSkipsPendingWrites(t *testing.T) {
	// The store is empty and the feed never confirms, so the optimistic
	// record stays pending. A full refetch would wipe it; the resyncer
	// must leave that session alone.
	store := &countingStore{}
	registry := syncer.NewRegistry(store, idleFeed{}, logger.Noop())
	defer registry.Close()

	s := registry.Ensure("user-1")

	// Let the Run loop finish its initial fetch before going pending.
	deadline := time.Now().Add(time.Second)
	for store.count() < 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	s.Add("Example", "example.com")

	r := NewResyncer(registry, logger.Noop(), time.Hour, nil)
	r.ResyncAll(context.Background())

	if got := len(s.Bookmarks()); got != 1 {
		t.Errorf("resync clobbered an unconfirmed record, list has %d entries, want 1", got)
	}
}

func TestResyncAllWithNoSessions(t *testing.T) {
	registry := syncer.NewRegistry(&countingStore{}, idleFeed{}, logger.Noop())
	r := NewResyncer(registry, logger.Noop(), time.Hour, nil)

	// Must not panic or log spuriously with nothing registered.
	r.ResyncAll(context.Background())
}
