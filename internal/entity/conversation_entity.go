package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	Title     string
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// EffectiveUpdatedAt is the timestamp used for LWW comparison:
// the last explicit update, or creation time if the row was never updated.
func (c *Conversation) EffectiveUpdatedAt() time.Time {
	if c.UpdatedAt != nil {
		return *c.UpdatedAt
	}
	return c.CreatedAt
}
