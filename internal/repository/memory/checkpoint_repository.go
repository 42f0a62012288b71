package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CheckpointRepository remembers, per device, when we last persisted a
// checkpoint to sync_devices. Pull is called in tight loops by eager
// clients; the cache keeps that from becoming a write per call.
type CheckpointRepository struct {
	cache    *cache.Cache
	interval time.Duration
}

func NewCheckpointRepository(interval time.Duration) *CheckpointRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &CheckpointRepository{
		cache:    c,
		interval: interval,
	}
}

// ShouldPersist reports whether the device's checkpoint row is due for a
// write, and marks it written when it is.
func (r *CheckpointRepository) ShouldPersist(deviceId uuid.UUID, now time.Time) bool {
	key := deviceId.String()
	if x, found := r.cache.Get(key); found {
		if last, ok := x.(time.Time); ok && now.Sub(last) < r.interval {
			return false
		}
	}
	r.cache.Set(key, now, cache.DefaultExpiration)
	return true
}

func (r *CheckpointRepository) Forget(deviceId uuid.UUID) {
	r.cache.Delete(deviceId.String())
}
