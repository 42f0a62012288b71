package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SyncDevice struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name         string         `gorm:"type:varchar(255)"`
	Platform     string         `gorm:"type:varchar(100)"`
	LastPulledAt *time.Time     `gorm:""`
	LastPushedAt *time.Time     `gorm:""`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (SyncDevice) TableName() string {
	return "sync_devices"
}
