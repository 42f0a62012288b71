package implementation

import (
	"context"
	"errors"
	"time"

	"graphnode-be/internal/entity"
	"graphnode-be/internal/mapper"
	"graphnode-be/internal/model"
	"graphnode-be/internal/repository/contract"
	"graphnode-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.ToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) Update(ctx context.Context, message *entity.Message) error {
	m := r.mapper.ToModel(message)
	if err := r.db.WithContext(ctx).Unscoped().Save(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": at, "updated_at": at}).Error
}

func (r *MessageRepositoryImpl) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.Message{}, id).Error
}

func (r *MessageRepositoryImpl) Restore(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Unscoped().Model(&model.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted_at": nil, "updated_at": at}).Error
}

func (r *MessageRepositoryImpl) SoftDeleteByConversationId(ctx context.Context, userId, conversationId uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("user_id = ? AND conversation_id = ?", userId, conversationId).
		Updates(map[string]interface{}{"deleted_at": at, "updated_at": at}).Error
}

func (r *MessageRepositoryImpl) RestoreByConversationId(ctx context.Context, userId, conversationId uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Unscoped().Model(&model.Message{}).
		Where("user_id = ? AND conversation_id = ?", userId, conversationId).
		Updates(map[string]interface{}{"deleted_at": nil, "updated_at": at}).Error
}

func (r *MessageRepositoryImpl) HardDeleteByConversationId(ctx context.Context, userId, conversationId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().
		Where("user_id = ? AND conversation_id = ?", userId, conversationId).
		Delete(&model.Message{}).Error
}

func (r *MessageRepositoryImpl) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("user_id = ?", userId).Delete(&model.Message{}).Error
}

func (r *MessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	var m model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
