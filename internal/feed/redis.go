package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/marklist/marklist/internal/domain"
	"github.com/marklist/marklist/internal/logger"
	"github.com/marklist/marklist/internal/utils"
)

// eventBuffer bounds how many undelivered events a slow consumer can lag
// behind before delivery blocks.
const eventBuffer = 64

// RedisFeed implements Feed on top of redis pub/sub.
type RedisFeed struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisFeed creates a feed backed by the given redis client.
func NewRedisFeed(client *redis.Client, log logger.Logger) *RedisFeed {
	return &RedisFeed{
		client: client,
		logger: log,
	}
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan domain.ChangeEvent
}

func (s *redisSubscription) Events() <-chan domain.ChangeEvent { return s.events }

func (s *redisSubscription) Close() error { return s.pubsub.Close() }

// Subscribe opens one pub/sub channel for the user and decodes payloads
// into change events. Payloads that fail to decode or carry an unknown
// event type are dropped. The returned subscription lives until Close or
// ctx cancellation.
func (f *RedisFeed) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	pubsub := f.client.Subscribe(ctx, Channel(userID))

	// Confirm the subscription is established before handing it out.
	if _, err := pubsub.Receive(ctx); err != nil {
		utils.Close(pubsub)
		return nil, err
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan domain.ChangeEvent, eventBuffer),
	}

	go f.pump(ctx, userID, sub)

	return sub, nil
}

func (f *RedisFeed) pump(ctx context.Context, userID string, sub *redisSubscription) {
	defer close(sub.events)

	ch := sub.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			utils.Close(sub.pubsub)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event domain.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				f.logger.Debug("dropping undecodable feed payload",
					logger.String("user_id", userID),
					logger.Error(err))
				continue
			}
			if !event.Known() {
				f.logger.Debug("dropping feed payload with unknown event type",
					logger.String("user_id", userID),
					logger.String("type", string(event.Type)))
				continue
			}

			select {
			case sub.events <- event:
			case <-ctx.Done():
				utils.Close(sub.pubsub)
				return
			}
		}
	}
}
