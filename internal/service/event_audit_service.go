// FILE: internal/service/event_audit_service.go
package service

import (
	"context"

	"graphnode-be/internal/pkg/logger"
	"graphnode-be/pkg/events"
	pktNats "graphnode-be/pkg/nats"
)

// EventAuditService tails the domain event stream and writes every event to
// the structured log. It is the server-side audit trail for things the sync
// API does on a user's behalf: registrations, cascade deletes, pushes.
type EventAuditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewEventAuditService(subscriber *pktNats.Subscriber, log logger.ILogger) *EventAuditService {
	return &EventAuditService{
		subscriber: subscriber,
		logger:     log,
	}
}

// Start attaches the durable consumer. Run it on its own goroutine; the
// subscription delivers in the background until the connection closes.
func (s *EventAuditService) Start() {
	if err := s.subscriber.Subscribe("events.>", "event-audit-worker", s.handleEvent); err != nil {
		s.logger.Error("event_audit", "failed to subscribe to event stream", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *EventAuditService) handleEvent(_ context.Context, event events.Event) error {
	details := map[string]interface{}{
		"occurred_at": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		details[k] = v
	}
	s.logger.Info("event_audit", event.EventType(), details)
	return nil
}
