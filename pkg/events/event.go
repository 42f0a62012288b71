// Package events defines the contract for domain events crossing the NATS
// bus. The bus subject for an event is "events.<name>".
package events

import "time"

// Event names used across the services.
const (
	UserRegistered = "USER_REGISTERED"
	FolderDeleted  = "FOLDER_DELETED"
	FolderRestored = "FOLDER_RESTORED"
	SyncPushed     = "SYNC_PUSHED"
)

// Event is what publishers emit and subscribers receive.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the plain implementation the services construct inline.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string { return e.Type }

func (e BaseEvent) Payload() map[string]interface{} { return e.Data }

func (e BaseEvent) Timestamp() time.Time { return e.OccurredAt }
