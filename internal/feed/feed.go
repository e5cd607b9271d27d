// Package feed delivers realtime bookmark change events, one subscription
// per active session.
package feed

import (
	"context"

	"github.com/marklist/marklist/internal/domain"
)

// Channel returns the pub/sub channel carrying one user's change events.
func Channel(userID string) string {
	return "marklist:events:" + userID
}

// Subscription is one live realtime channel. Events() is closed when the
// subscription is torn down.
type Subscription interface {
	Events() <-chan domain.ChangeEvent
	Close() error
}

// Feed hands out change-event subscriptions keyed by session identity.
type Feed interface {
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}
