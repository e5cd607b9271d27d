package redis

import "fmt"

const (
	// KeyPrefix namespaces every key this service writes.
	KeyPrefix = "marklist:"

	// KeyPrefixBookmark prefixes individual bookmark rows.
	KeyPrefixBookmark = KeyPrefix + "bookmark:"
)

// SeqKey is the sequence allocating durable bookmark ids.
func SeqKey() string {
	return KeyPrefix + "seq:bookmark"
}

// BookmarkKey returns the key holding one bookmark row.
func BookmarkKey(id int64) string {
	return fmt.Sprintf("%s%d", KeyPrefixBookmark, id)
}

// UserBookmarksKey returns the sorted set of a user's bookmark ids,
// scored by creation time so a reverse range yields most-recent-first.
func UserBookmarksKey(userID string) string {
	return fmt.Sprintf("%suser:%s:bookmarks", KeyPrefix, userID)
}

// UserURLsKey returns the set of a user's bookmark URLs, used to skip
// duplicates on bulk import.
func UserURLsKey(userID string) string {
	return fmt.Sprintf("%suser:%s:urls", KeyPrefix, userID)
}

// SessionKey returns the key holding one session row.
func SessionKey(sessionID string) string {
	return KeyPrefix + "session:" + sessionID
}
