package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Routing keys for domain events.
const (
	EventRatingCreated = "rating.created"
	EventStoreCreated  = "store.created"
	EventStoreUpdated  = "store.updated"
	EventStoreDeleted  = "store.deleted"
	EventUserCreated   = "user.created"
	EventUserDeleted   = "user.deleted"
)

// Publisher is satisfied by *mq.Publisher.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type NopPublisher struct{}

func (NopPublisher) PublishJSON(context.Context, string, any) error { return nil }

type Event struct {
	Type    string    `json:"type"`
	ActorID uint      `json:"actorId"`
	At      time.Time `json:"at"`
	Data    any       `json:"data"`
}

// notifier runs the after-write side effects: summary cache invalidation first, then the event.
// Neither can fail the write that triggered it.
type notifier struct {
	pub   Publisher
	cache *SummaryCache
	log   *zap.Logger
}

func (n *notifier) changed(ctx context.Context, key string, actorID uint, data any) {
	if n.cache != nil {
		if err := n.cache.Invalidate(ctx); err != nil {
			n.log.Error("summary cache invalidate failed", zap.String("event", key), zap.Error(err))
		}
	}
	ev := Event{Type: key, ActorID: actorID, At: time.Now().UTC(), Data: data}
	if err := n.pub.PublishJSON(ctx, key, ev); err != nil {
		n.log.Warn("publish event failed", zap.String("event", key), zap.Error(err))
	}
}
