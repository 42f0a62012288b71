package dto

import (
	"time"

	"github.com/google/uuid"
)

// Entity payloads shared by Pull and Push. Timestamps travel as ISO-8601
// strings and the JSON layer parses them; a malformed instant rejects the
// request before any store access.

type ConversationPayload struct {
	Id        uuid.UUID  `json:"id" validate:"required"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type MessagePayload struct {
	Id             uuid.UUID  `json:"id" validate:"required"`
	ConversationId uuid.UUID  `json:"conversation_id" validate:"required"`
	Role           string     `json:"role" validate:"required,oneof=user assistant system"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at"`
}

type NotePayload struct {
	Id        uuid.UUID  `json:"id" validate:"required"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	FolderId  *uuid.UUID `json:"folder_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type FolderPayload struct {
	Id        uuid.UUID  `json:"id" validate:"required"`
	Name      string     `json:"name"`
	ParentId  *uuid.UUID `json:"parent_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type PullResponse struct {
	Conversations []*ConversationPayload `json:"conversations"`
	Messages      []*MessagePayload      `json:"messages"`
	Notes         []*NotePayload         `json:"notes"`
	Folders       []*FolderPayload       `json:"folders"`
	ServerTime    time.Time              `json:"server_time"`
}

type PushRequest struct {
	Conversations []*ConversationPayload `json:"conversations" validate:"omitempty,dive"`
	Messages      []*MessagePayload      `json:"messages" validate:"omitempty,dive"`
	Notes         []*NotePayload         `json:"notes" validate:"omitempty,dive"`
	Folders       []*FolderPayload       `json:"folders" validate:"omitempty,dive"`
}

// PushKindResult is telemetry, not a conflict report: items that lose LWW or
// hit a foreign id are counted as skipped and nothing more is said about
// them.
type PushKindResult struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

type PushResponse struct {
	Conversations PushKindResult `json:"conversations"`
	Messages      PushKindResult `json:"messages"`
	Notes         PushKindResult `json:"notes"`
	Folders       PushKindResult `json:"folders"`
	ServerTime    time.Time      `json:"server_time"`
}

type SyncDeviceResponse struct {
	Id           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Platform     string                 `json:"platform"`
	LastPulledAt *time.Time             `json:"last_pulled_at"`
	LastPushedAt *time.Time             `json:"last_pushed_at"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// SyncChangedMessage travels over the internal change bus after a push or
// cascade commits, so the owner's other devices get nudged to pull.
type SyncChangedMessage struct {
	UserId uuid.UUID `json:"user_id"`
	Kinds  []string  `json:"kinds"`
}
