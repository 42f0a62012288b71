package contract

import (
	"context"
	"time"

	"graphnode-be/internal/entity"
	"graphnode-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	Update(ctx context.Context, message *entity.Message) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID, at time.Time) error
	SoftDeleteByConversationId(ctx context.Context, userId, conversationId uuid.UUID, at time.Time) error
	RestoreByConversationId(ctx context.Context, userId, conversationId uuid.UUID, at time.Time) error
	HardDeleteByConversationId(ctx context.Context, userId, conversationId uuid.UUID) error
	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
