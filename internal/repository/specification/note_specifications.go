package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByFolderIDs struct {
	FolderIDs []uuid.UUID
}

func (s ByFolderIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("folder_id IN ?", s.FolderIDs)
}
