// Package eventbus provides event-driven communication between the ingest
// surface and the workers running executions.
package eventbus

import (
	"context"

	"github.com/convy/flow/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventHandler func(ctx context.Context, event any) error

// InboundHandler is called for every inbound conversation event.
type InboundHandler func(ctx context.Context, message *events.InboundMessage) error

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
	PublishInbound(ctx context.Context, message *events.InboundMessage) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler)
	HandleInbound(handler InboundHandler)
	Subscribe(ctx context.Context) error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
