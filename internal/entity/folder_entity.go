package entity

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	Id        uuid.UUID
	Name      string
	ParentId  *uuid.UUID // nil = root-level folder
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

func (f *Folder) EffectiveUpdatedAt() time.Time {
	if f.UpdatedAt != nil {
		return *f.UpdatedAt
	}
	return f.CreatedAt
}
