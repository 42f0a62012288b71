package specification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// UserOwnedBy restricts every query to the authenticated owner's rows.
type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// UpdatedSince selects rows changed at or after the checkpoint. Deliberately
// inclusive: a client that pulls with the server_time of its previous pull
// may see a boundary row twice, never miss one.
type UpdatedSince struct {
	Since time.Time
}

func (s UpdatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at >= ?", s.Since)
}

// WithDeleted disables the default soft-delete scope so tombstoned rows are
// visible (pull deltas, LWW lookups, restore).
type WithDeleted struct{}

func (s WithDeleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}
