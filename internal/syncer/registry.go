package syncer

import (
	"context"
	"sync"

	"github.com/marklist/marklist/internal/feed"
	"github.com/marklist/marklist/internal/logger"
)

// Registry holds at most one running synchronizer per user, keyed by the
// stable user id so repeated sign-in notifications for the same identity
// never tear down and rebuild a live subscription.
type Registry struct {
	store  Store
	feed   feed.Feed
	logger logger.Logger

	mu     sync.Mutex
	active map[string]*registration
}

type registration struct {
	sync   *Synchronizer
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry(store Store, f feed.Feed, log logger.Logger) *Registry {
	return &Registry{
		store:  store,
		feed:   f,
		logger: log,
		active: make(map[string]*registration),
	}
}

// Ensure returns the user's synchronizer, starting one when none is live.
// Calling Ensure again with the same user id is a no-op returning the
// existing instance.
func (r *Registry) Ensure(userID string) *Synchronizer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.active[userID]; ok {
		return reg.sync
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, userID, r.store, r.feed, r.logger)
	reg := &registration{
		sync:   s,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.active[userID] = reg

	go func() {
		defer close(reg.done)
		s.Run()
	}()

	r.logger.Info("synchronizer started", logger.String("user_id", userID))
	return s
}

// Get returns the user's synchronizer, or nil when none is live.
func (r *Registry) Get(userID string) *Synchronizer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.active[userID]; ok {
		return reg.sync
	}
	return nil
}

// Drop stops the user's synchronizer, clears its list and closes its
// watcher channels, so any stream still attached to the old instance
// terminates and reconnects through Ensure. Dropping an unknown user is a
// no-op.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	reg, ok := r.active[userID]
	if ok {
		delete(r.active, userID)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	reg.cancel()
	<-reg.done
	reg.sync.list.Clear()
	reg.sync.shutdown()
	r.logger.Info("synchronizer stopped", logger.String("user_id", userID))
}

// ForEach runs fn for every live synchronizer.
func (r *Registry) ForEach(fn func(s *Synchronizer)) {
	r.mu.Lock()
	syncs := make([]*Synchronizer, 0, len(r.active))
	for _, reg := range r.active {
		syncs = append(syncs, reg.sync)
	}
	r.mu.Unlock()

	for _, s := range syncs {
		fn(s)
	}
}

// Close stops every live synchronizer.
func (r *Registry) Close() {
	r.mu.Lock()
	users := make([]string, 0, len(r.active))
	for userID := range r.active {
		users = append(users, userID)
	}
	r.mu.Unlock()

	for _, userID := range users {
		r.Drop(userID)
	}
}
