package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"graphnode-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler processes one event delivered from the bus. Returning an
// error nacks the message so JetStream redelivers it.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber attaches durable consumers to the events stream.
type Subscriber struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewSubscriber(url string) (*Subscriber, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe registers a handler for a subject pattern under a durable
// consumer, so delivery resumes where it left off across restarts.
func (s *Subscriber) Subscribe(subject string, durableName string, handler EventHandler) error {
	ctx := context.Background()

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	_, err = consumer.Consume(func(msg jetstream.Msg) {
		var payload map[string]interface{}
		if err := json.Unmarshal(msg.Data(), &payload); err != nil {
			// Malformed payloads will never parse; ack so they don't loop.
			log.Printf("Dropping malformed event on %s: %v", msg.Subject(), err)
			msg.Ack()
			return
		}

		eventType := msg.Headers().Get(headerEventType)
		if eventType == "" {
			eventType = strings.TrimPrefix(msg.Subject(), subjectPrefix)
		}
		occurredAt := time.Now().UTC()
		if raw := msg.Headers().Get(headerEventTime); raw != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				occurredAt = parsed
			}
		}

		event := events.BaseEvent{Type: eventType, Data: payload, OccurredAt: occurredAt}
		if err := handler(context.Background(), event); err != nil {
			log.Printf("Handler failed for event %s: %v", eventType, err)
			msg.Nak()
			return
		}

		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return nil
}

// Close closes the connection.
func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
