package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

type User struct {
	Id           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
