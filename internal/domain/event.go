package domain

// EventType identifies the kind of realtime change notification.
type EventType string

const (
	EventInsert EventType = "insert"
	EventDelete EventType = "delete"
	EventUpdate EventType = "update"
)

// ChangeEvent is one realtime push notification from the collection store.
// Insert events carry NewRow; delete events carry the full prior row in
// OldRow (the store publishes it, so delete notifications are matchable by
// id). Payloads with an unknown Type are ignored by consumers.
type ChangeEvent struct {
	Type   EventType       `json:"type"`
	NewRow *BookmarkRecord `json:"new_row,omitempty"`
	OldRow *BookmarkRecord `json:"old_row,omitempty"`
}

// Known reports whether the event type is one this component understands.
func (e ChangeEvent) Known() bool {
	switch e.Type {
	case EventInsert, EventDelete, EventUpdate:
		return true
	}
	return false
}
