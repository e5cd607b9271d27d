package domain

import "testing"

func TestNewTempIDIsTemporary(t *testing.T) {
	id := NewTempID()
	if !IsTempID(id) {
		t.Errorf("NewTempID() = %d, expected it to be in the temporary range", id)
	}
}

func TestNewTempIDsAreDistinct(t *testing.T) {
	// Two optimistic inserts in the same millisecond must not share an id,
	// or a failure rollback could remove the wrong pending record.
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := NewTempID()
		if seen[id] {
			t.Fatalf("NewTempID() repeated %d after %d calls", id, i)
		}
		if !IsTempID(id) {
			t.Fatalf("NewTempID() = %d, expected it to be in the temporary range", id)
		}
		seen[id] = true
	}
}

func TestIsTempID(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{name: "first durable id", id: 1, want: false},
		{name: "large durable id", id: 10_000_000, want: false},
		{name: "floor is temporary", id: tempIDFloor, want: true},
		{name: "wall-clock millis", id: 1_756_200_000_000, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTempID(tt.id); got != tt.want {
				t.Errorf("IsTempID(%d) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestNewPending(t *testing.T) {
	rec := NewPending("user-1", "Example", "https://example.com")

	if !rec.Pending {
		t.Error("NewPending() record should be pending")
	}
	if !IsTempID(rec.ID) {
		t.Errorf("NewPending() id = %d, expected a temporary id", rec.ID)
	}
	if rec.UserID != "user-1" || rec.Title != "Example" || rec.URL != "https://example.com" {
		t.Errorf("NewPending() populated fields incorrectly: %+v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("NewPending() should stamp CreatedAt")
	}
}
