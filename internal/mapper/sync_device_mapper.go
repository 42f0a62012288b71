package mapper

import (
	"encoding/json"
	"time"

	"graphnode-be/internal/entity"
	"graphnode-be/internal/model"

	"gorm.io/datatypes"
)

type SyncDeviceMapper struct{}

func NewSyncDeviceMapper() *SyncDeviceMapper {
	return &SyncDeviceMapper{}
}

func (m *SyncDeviceMapper) ToEntity(d *model.SyncDevice) *entity.SyncDevice {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var metadata map[string]interface{}
	if len(d.Metadata) > 0 {
		// Malformed blobs are dropped rather than failing the read.
		_ = json.Unmarshal(d.Metadata, &metadata)
	}

	return &entity.SyncDevice{
		Id:           d.Id,
		UserId:       d.UserId,
		Name:         d.Name,
		Platform:     d.Platform,
		LastPulledAt: d.LastPulledAt,
		LastPushedAt: d.LastPushedAt,
		Metadata:     metadata,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *SyncDeviceMapper) ToModel(d *entity.SyncDevice) *model.SyncDevice {
	if d == nil {
		return nil
	}

	var metadata datatypes.JSON
	if d.Metadata != nil {
		if raw, err := json.Marshal(d.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.SyncDevice{
		Id:           d.Id,
		UserId:       d.UserId,
		Name:         d.Name,
		Platform:     d.Platform,
		LastPulledAt: d.LastPulledAt,
		LastPushedAt: d.LastPushedAt,
		Metadata:     metadata,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *SyncDeviceMapper) ToEntities(devices []*model.SyncDevice) []*entity.SyncDevice {
	entities := make([]*entity.SyncDevice, len(devices))
	for i, d := range devices {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
