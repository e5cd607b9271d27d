package domain

import (
	"sync/atomic"
	"time"
)

// tempIDFloor separates the temporary id space from durable store ids.
// Durable ids are allocated from a sequence starting at 1; temporary ids
// are derived from wall-clock milliseconds (~1.7e12 today) shifted left by
// tempIDSeqBits, so every value at or above the floor is temporary.
const tempIDFloor int64 = 1 << 40

// tempIDSeqBits low bits of a temporary id hold a process-wide counter,
// keeping ids minted within the same millisecond distinct.
const (
	tempIDSeqBits = 20
	tempIDSeqMask = 1<<tempIDSeqBits - 1
)

var tempIDSeq atomic.Int64

// BookmarkRecord is one entry of the synchronized list.
type BookmarkRecord struct {
	// ID is the canonical identifier: a durable sequential id assigned by
	// the store, or a temporary id (see NewTempID) while the insert is
	// unconfirmed.
	ID int64 `json:"id"`

	// UserID is the owning session identity.
	UserID string `json:"user_id"`

	Title string `json:"title"`

	// URL always carries an explicit scheme, see NormalizeURL.
	URL string `json:"url"`

	// Pending marks a locally created record not yet confirmed by the store.
	Pending bool `json:"pending,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewTempID returns a temporary identifier for a pending record: current
// wall-clock milliseconds in the high bits, a counter in the low bits.
// The millisecond component lands far above any sequential store id, so
// the two id spaces never collide, and the counter keeps two ids minted
// in the same millisecond distinct.
func NewTempID() int64 {
	seq := tempIDSeq.Add(1) & tempIDSeqMask
	return time.Now().UnixMilli()<<tempIDSeqBits | seq
}

// IsTempID reports whether id belongs to the temporary id space.
func IsTempID(id int64) bool {
	return id >= tempIDFloor
}

// NewPending builds the optimistic local record for an unconfirmed insert.
func NewPending(userID, title, url string) *BookmarkRecord {
	return &BookmarkRecord{
		ID:        NewTempID(),
		UserID:    userID,
		Title:     title,
		URL:       url,
		Pending:   true,
		CreatedAt: time.Now(),
	}
}
