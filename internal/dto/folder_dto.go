package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateFolderRequest struct {
	Name     string     `json:"name" validate:"required"`
	ParentId *uuid.UUID `json:"parent_id"`
}

type CreateFolderResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateFolderRequest struct {
	Id   uuid.UUID
	Name string `json:"name" validate:"required"`
}

type UpdateFolderResponse struct {
	Id uuid.UUID `json:"id"`
}

type MoveFolderRequest struct {
	Id       uuid.UUID
	ParentId *uuid.UUID `json:"parent_id"`
}

type MoveFolderResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllFolderResponseNote struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetAllFolderResponse struct {
	Id        uuid.UUID                   `json:"id"`
	Name      string                      `json:"name"`
	ParentId  *uuid.UUID                  `json:"parent_id"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt *time.Time                  `json:"updated_at"`
	Notes     []*GetAllFolderResponseNote `json:"notes"`
}
