package implementation

import (
	"context"
	"errors"

	"graphnode-be/internal/entity"
	"graphnode-be/internal/mapper"
	"graphnode-be/internal/model"
	"graphnode-be/internal/repository/contract"
	"graphnode-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncDeviceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SyncDeviceMapper
}

func NewSyncDeviceRepository(db *gorm.DB) contract.SyncDeviceRepository {
	return &SyncDeviceRepositoryImpl{
		db:     db,
		mapper: mapper.NewSyncDeviceMapper(),
	}
}

func (r *SyncDeviceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SyncDeviceRepositoryImpl) Upsert(ctx context.Context, device *entity.SyncDevice) error {
	m := r.mapper.ToModel(device)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "platform", "last_pulled_at", "last_pushed_at", "metadata", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*device = *r.mapper.ToEntity(m)
	return nil
}

func (r *SyncDeviceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SyncDevice, error) {
	var m model.SyncDevice
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SyncDeviceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SyncDevice, error) {
	var models []*model.SyncDevice
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SyncDeviceRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.SyncDevice{}).Error
}
