package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role           string         `gorm:"type:varchar(50);not null"`
	Content        string         `gorm:"type:text"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_user_updated,priority:1"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime:false;index:idx_messages_user_updated,priority:2"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
