package contract

import (
	"context"
	"time"

	"graphnode-be/internal/entity"
	"graphnode-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID, at time.Time) error

	// Cascade bulk mutations, owner-scoped; callers run them inside the
	// unit of work together with the matching folder mutation.
	SoftDeleteByFolderIds(ctx context.Context, userId uuid.UUID, folderIds []uuid.UUID, at time.Time) error
	RestoreByFolderIds(ctx context.Context, userId uuid.UUID, folderIds []uuid.UUID, at time.Time) error
	HardDeleteByFolderIds(ctx context.Context, userId uuid.UUID, folderIds []uuid.UUID) error

	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error   // Hard delete all
	HardDeleteInFoldersByUserId(ctx context.Context, userId uuid.UUID) error // Hard delete all with a folder_id; root notes survive
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
