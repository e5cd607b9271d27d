package list

import (
	"testing"

	"github.com/marklist/marklist/internal/domain"
)

func confirmed(id int64, title, url string) *domain.BookmarkRecord {
	return &domain.BookmarkRecord{ID: id, Title: title, URL: url}
}

func TestNewListIsEmpty(t *testing.T) {
	l := New()
	if l.Len() != 0 {
		t.Errorf("New() list should be empty, got %d records", l.Len())
	}
}

func TestPrependOrdersMostRecentFirst(t *testing.T) {
	l := New()
	l.Prepend(confirmed(1, "first", "https://one.example.com"))
	l.Prepend(confirmed(2, "second", "https://two.example.com"))

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Len = %d, want 2", len(snap))
	}
	if snap[0].ID != 2 || snap[1].ID != 1 {
		t.Errorf("order = [%d %d], want [2 1]", snap[0].ID, snap[1].ID)
	}
}

func TestConfirmReplacesPendingByURL(t *testing.T) {
	l := New()
	l.Prepend(confirmed(1, "older", "https://old.example.com"))
	pending := domain.NewPending("u1", "Example", "https://example.com")
	l.Prepend(pending)

	l.Confirm(confirmed(42, "Example", "https://example.com"))

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Len = %d, want 2 (pending replaced, not duplicated)", len(snap))
	}
	if snap[0].ID != 42 {
		t.Errorf("confirmed record should keep the pending position, got id %d", snap[0].ID)
	}
	if snap[0].Pending {
		t.Error("confirmed record should not be pending")
	}
}

func TestConfirmFromOtherSessionPrepends(t *testing.T) {
	l := New()
	l.Prepend(confirmed(1, "mine", "https://mine.example.com"))

	l.Confirm(confirmed(7, "theirs", "https://theirs.example.com"))

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Len = %d, want 2", len(snap))
	}
	if snap[0].ID != 7 {
		t.Errorf("remote insert should prepend, head id = %d, want 7", snap[0].ID)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	l := New()
	rec := confirmed(42, "Example", "https://example.com")

	l.Confirm(rec)
	l.Confirm(rec)

	if l.Len() != 1 {
		t.Errorf("applying the same confirmation twice produced %d records, want 1", l.Len())
	}
}

func TestConfirmDoesNotMatchConfirmedURL(t *testing.T) {
	// A non-pending record with the same URL must not be replaced: only
	// pending records participate in URL matching.
	l := New()
	l.Confirm(confirmed(1, "a", "https://example.com"))
	l.Confirm(confirmed(2, "b", "https://example.com"))

	if l.Len() != 2 {
		t.Errorf("two distinct durable ids with the same URL should coexist, got %d records", l.Len())
	}
}

func TestRemoveByID(t *testing.T) {
	l := New()
	l.Prepend(confirmed(1, "A", "https://a.example.com"))
	l.Prepend(confirmed(2, "B", "https://b.example.com"))

	l.Remove(2)

	snap := l.Snapshot()
	if len(snap) != 1 || snap[0].ID != 1 {
		t.Errorf("after Remove(2) list = %+v, want only id 1", snap)
	}
}

func TestRemoveAbsentIDIsNoop(t *testing.T) {
	l := New()
	l.Prepend(confirmed(1, "A", "https://a.example.com"))

	l.Remove(99)
	l.Remove(1)
	l.Remove(1)

	if l.Len() != 0 {
		t.Errorf("Len = %d, want 0", l.Len())
	}
}

func TestReplaceAll(t *testing.T) {
	l := New()
	l.Prepend(domain.NewPending("u1", "stale", "https://stale.example.com"))

	l.ReplaceAll([]*domain.BookmarkRecord{
		confirmed(3, "C", "https://c.example.com"),
		confirmed(2, "B", "https://b.example.com"),
	})

	snap := l.Snapshot()
	if len(snap) != 2 || snap[0].ID != 3 || snap[1].ID != 2 {
		t.Errorf("ReplaceAll result = %+v, want [3 2]", snap)
	}
	if l.HasPending() {
		t.Error("ReplaceAll should drop stale pending records")
	}
}

func TestClear(t *testing.T) {
	l := New()
	l.Prepend(confirmed(1, "A", "https://a.example.com"))
	l.Clear()

	if l.Len() != 0 {
		t.Errorf("Clear() left %d records", l.Len())
	}
}

func TestConvergenceAcrossInterleavings(t *testing.T) {
	// Any interleaving of local and remote operations on disjoint ids must
	// converge to the set of non-deleted records.
	type op func(l *List)

	add1 := func(l *List) { l.Confirm(confirmed(1, "A", "https://a.example.com")) }
	add2 := func(l *List) { l.Confirm(confirmed(2, "B", "https://b.example.com")) }
	del2Local := func(l *List) { l.Remove(2) }
	del2Remote := func(l *List) { l.Remove(2) }

	interleavings := [][]op{
		{add1, add2, del2Local, del2Remote},
		{add1, add2, del2Remote, del2Local},
		{add2, del2Local, add1, del2Remote},
		{add2, del2Remote, del2Local, add1},
	}

	for i, ops := range interleavings {
		l := New()
		for _, o := range ops {
			o(l)
		}
		snap := l.Snapshot()
		if len(snap) != 1 || snap[0].ID != 1 {
			t.Errorf("interleaving %d converged to %+v, want only id 1", i, snap)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	l := New()
	l.Prepend(confirmed(1, "A", "https://a.example.com"))

	snap := l.Snapshot()
	snap[0] = confirmed(99, "mutated", "https://x.example.com")

	if l.Snapshot()[0].ID != 1 {
		t.Error("mutating a snapshot must not affect the list")
	}
}
