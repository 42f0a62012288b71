package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdatedAt is client-authored under Last-Write-Wins, so GORM must never
// stamp it behind the application's back.
type Note struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string         `gorm:"type:varchar(255);not null"`
	Content   string         `gorm:"type:text"`
	FolderId  *uuid.UUID     `gorm:"type:uuid;index"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index:idx_notes_user_updated,priority:1"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false;index:idx_notes_user_updated,priority:2"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}
