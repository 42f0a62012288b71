package service

import (
	"time"

	"github.com/google/uuid"
)

type pushDecision int

const (
	pushCreate pushDecision = iota
	pushUpdate
	pushSkipStale   // server holds an equal or fresher version
	pushSkipForeign // id collides with another owner's entity
)

// serverRecord is what the push loop knows about the stored entity with the
// incoming id, if any.
type serverRecord struct {
	OwnerId   uuid.UUID
	UpdatedAt time.Time
}

// decidePush is the Last-Write-Wins rule for one push item. Foreign rows are
// skipped without distinction from a stale write, so a push can never be
// used to probe whether an id exists under another account. Ties go to the
// server, which makes re-pushing an unchanged item a guaranteed no-op.
func decidePush(owner uuid.UUID, existing *serverRecord, incomingUpdatedAt time.Time) pushDecision {
	if existing == nil {
		return pushCreate
	}
	if existing.OwnerId != owner {
		return pushSkipForeign
	}
	if !existing.UpdatedAt.Before(incomingUpdatedAt) {
		return pushSkipStale
	}
	return pushUpdate
}
