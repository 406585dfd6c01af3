package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/convy/flow/pkg/events"
)

// WatermillEventBus routes lifecycle and inbound events through any watermill
// publisher/subscriber pair (gochannel in-process, kafka in production).
type WatermillEventBus struct {
	publisher       message.Publisher
	subscriber      message.Subscriber
	subscriptions   map[events.EventType]EventHandler
	inboundHandlers []InboundHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

func (eb *WatermillEventBus) PublishInbound(ctx context.Context, inbound *events.InboundMessage) error {
	if err := inbound.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(inbound)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, inbound.ConversationID)

	return eb.publisher.Publish(events.InboundTopic, msg)
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) {
	eb.subscriptions[eventType] = handler
}

func (eb *WatermillEventBus) HandleInbound(handler InboundHandler) {
	eb.inboundHandlers = append(eb.inboundHandlers, handler)
}

func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	if err := eb.subscribeLifecycle(ctx); err != nil {
		return err
	}

	return eb.subscribeInbound(ctx)
}

func (eb *WatermillEventBus) subscribeLifecycle(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

			handler, exists := eb.subscriptions[eventType]
			if !exists {
				msg.Ack()

				continue
			}

			var event any

			switch eventType {
			case events.ExecutionStartedEvent:
				event = &events.ExecutionStarted{}
			case events.ExecutionCompletedEvent:
				event = &events.ExecutionCompleted{}
			case events.ExecutionFailedEvent:
				event = &events.ExecutionFailed{}
			case events.ExecutionWaitingEvent:
				event = &events.ExecutionWaiting{}
			case events.ExecutionResumedEvent:
				event = &events.ExecutionResumed{}
			default:
				msg.Nack()

				continue
			}

			if err := json.Unmarshal(msg.Payload, event); err != nil {
				msg.Nack()

				continue
			}

			if err := handler(ctx, event); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) subscribeInbound(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.InboundTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var inbound events.InboundMessage

			if err := json.Unmarshal(msg.Payload, &inbound); err != nil {
				msg.Nack()

				continue
			}

			failed := false

			for _, handler := range eb.inboundHandlers {
				if err := handler(ctx, &inbound); err != nil {
					failed = true

					break
				}
			}

			if failed {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return err
	}

	return eb.subscriber.Close()
}
