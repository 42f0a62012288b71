package entity

import (
	"time"

	"github.com/google/uuid"
)

// SyncDevice tracks one client installation and the last checkpoints it
// reported. Purely operational: sync correctness never depends on it.
type SyncDevice struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Name         string
	Platform     string
	LastPulledAt *time.Time
	LastPushedAt *time.Time
	Metadata     map[string]interface{}
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
