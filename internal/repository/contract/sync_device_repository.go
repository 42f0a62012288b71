package contract

import (
	"context"

	"graphnode-be/internal/entity"
	"graphnode-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SyncDeviceRepository interface {
	Upsert(ctx context.Context, device *entity.SyncDevice) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SyncDevice, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SyncDevice, error)
	DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error
}
