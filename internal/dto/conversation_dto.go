package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Title string `json:"title" validate:"required"`
}

type CreateConversationResponse struct {
	Id uuid.UUID `json:"id"`
}

type ConversationResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type UpdateConversationRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required"`
}

type UpdateConversationResponse struct {
	Id uuid.UUID `json:"id"`
}

type AppendMessageRequest struct {
	ConversationId uuid.UUID
	Role           string `json:"role" validate:"required,oneof=user assistant system"`
	Content        string `json:"content" validate:"required"`
}

type AppendMessageResponse struct {
	Id uuid.UUID `json:"id"`
}

type MessageResponse struct {
	Id        uuid.UUID  `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
