package syncer

import (
	"testing"
	"time"

	"github.com/marklist/marklist/internal/logger"
)

func TestEnsureIsIdempotentPerUser(t *testing.T) {
	r := NewRegistry(newFakeStore(), newFakeFeed(), logger.Noop())
	defer r.Close()

	a := r.Ensure("user-1")
	b := r.Ensure("user-1")

	if a != b {
		t.Error("Ensure for the same user id must return the same synchronizer")
	}
	if other := r.Ensure("user-2"); other == a {
		t.Error("distinct users must get distinct synchronizers")
	}
}

func TestEnsureKeepsOneSubscriptionPerUser(t *testing.T) {
	f := newFakeFeed()
	r := NewRegistry(newFakeStore(), f, logger.Noop())
	defer r.Close()

	r.Ensure("user-1")
	r.Ensure("user-1")
	r.Ensure("user-1")

	eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.subscribes == 1
	}, "repeated Ensure must not resubscribe")

	// Give a spurious extra subscribe a chance to happen before checking.
	time.Sleep(20 * time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribes != 1 {
		t.Errorf("feed subscribed %d times, want 1", f.subscribes)
	}
}

func TestDropStopsAndClears(t *testing.T) {
	store := newFakeStore()
	r := NewRegistry(store, newFakeFeed(), logger.Noop())

	s := r.Ensure("user-1")
	s.Add("Example", "example.com")

	r.Drop("user-1")

	if got := r.Get("user-1"); got != nil {
		t.Error("Get after Drop should return nil")
	}
	if len(s.Bookmarks()) != 0 {
		t.Error("Drop should clear the stopped synchronizer's list")
	}

	// Dropping again is a no-op.
	r.Drop("user-1")
}

func TestDropClosesWatchers(t *testing.T) {
	// A stream on device B must not hang on a synchronizer dropped by a
	// sign-out on device A: its watch channel closes so it can reconnect.
	r := NewRegistry(newFakeStore(), newFakeFeed(), logger.Noop())
	defer r.Close()

	s := r.Ensure("user-1")
	updates, stopWatch := s.Watch()
	defer stopWatch()

	r.Drop("user-1")

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
			// Drain any coalesced signal queued before the close.
		case <-deadline:
			t.Fatal("watch channel should be closed after Drop")
		}
	}
}

func TestWatchAfterDropIsClosed(t *testing.T) {
	r := NewRegistry(newFakeStore(), newFakeFeed(), logger.Noop())
	defer r.Close()

	s := r.Ensure("user-1")
	r.Drop("user-1")

	updates, stopWatch := s.Watch()
	defer stopWatch()

	select {
	case _, ok := <-updates:
		if ok {
			t.Error("stopped synchronizer should hand out closed channels, not signals")
		}
	case <-time.After(time.Second):
		t.Fatal("Watch on a stopped synchronizer should return a closed channel")
	}
}

func TestEnsureAfterDropStartsFresh(t *testing.T) {
	r := NewRegistry(newFakeStore(), newFakeFeed(), logger.Noop())
	defer r.Close()

	a := r.Ensure("user-1")
	r.Drop("user-1")
	b := r.Ensure("user-1")

	if a == b {
		t.Error("Ensure after Drop should build a new synchronizer")
	}
}
