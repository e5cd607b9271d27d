package list

import (
	"sync"

	"github.com/marklist/marklist/internal/domain"
)

// List is the single authoritative in-memory bookmark list for one session.
// Three event sources mutate it concurrently (local optimistic edits, write
// completions, realtime push events); every mutation is one whole-list
// read-modify-write under the mutex, and every merge rule is idempotent so
// the list converges regardless of interleaving order.
type List struct {
	mu      sync.RWMutex
	records []*domain.BookmarkRecord // most-recent-first
}

// New creates an empty list.
func New() *List {
	return &List{}
}

// Prepend adds an optimistic local record at the head of the list.
func (l *List) Prepend(rec *domain.BookmarkRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append([]*domain.BookmarkRecord{rec}, l.records...)
}

// Confirm applies an insert confirmation event carrying a durable id.
// A pending record with the same URL is replaced in place (this covers the
// session's own insert confirmation; matching by URL rather than by a
// correlation token is documented behavior). Otherwise the record is
// prepended as new, unless its durable id is already present, in which
// case the event is a duplicate and nothing changes.
func (l *List) Confirm(rec *domain.BookmarkRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, existing := range l.records {
		if existing.Pending && domain.IsTempID(existing.ID) && existing.URL == rec.URL {
			confirmed := *rec
			confirmed.Pending = false
			l.records[i] = &confirmed
			return
		}
	}

	for _, existing := range l.records {
		if existing.ID == rec.ID {
			return
		}
	}

	confirmed := *rec
	confirmed.Pending = false
	l.records = append([]*domain.BookmarkRecord{&confirmed}, l.records...)
}

// Remove deletes the record with the given id. Removing an absent id is a
// no-op, so a push event arriving before (or after) the matching local
// delete converges to the same state.
func (l *List) Remove(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, existing := range l.records {
		if existing.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return
		}
	}
}

// ReplaceAll swaps in an authoritative refetch result.
func (l *List) ReplaceAll(records []*domain.BookmarkRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = make([]*domain.BookmarkRecord, len(records))
	copy(l.records, records)
}

// Clear drops every record (session ended).
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = nil
}

// Snapshot returns a copy of the current list, most-recent-first.
func (l *List) Snapshot() []*domain.BookmarkRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.BookmarkRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of visible records.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.records)
}

// HasPending reports whether any unconfirmed record is present.
func (l *List) HasPending() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, rec := range l.records {
		if rec.Pending {
			return true
		}
	}
	return false
}
