package contract

import (
	"context"
	"time"

	"graphnode-be/internal/entity"
	"graphnode-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FolderRepository interface {
	Create(ctx context.Context, folder *entity.Folder) error
	Update(ctx context.Context, folder *entity.Folder) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID, at time.Time) error

	SoftDeleteByIds(ctx context.Context, userId uuid.UUID, ids []uuid.UUID, at time.Time) error
	RestoreByIds(ctx context.Context, userId uuid.UUID, ids []uuid.UUID, at time.Time) error
	HardDeleteByIds(ctx context.Context, userId uuid.UUID, ids []uuid.UUID) error

	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Folder, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Folder, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
