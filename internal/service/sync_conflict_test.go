package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDecidePush(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		existing *serverRecord
		incoming time.Time
		want     pushDecision
	}{
		{
			name:     "no existing row creates",
			existing: nil,
			incoming: base,
			want:     pushCreate,
		},
		{
			name:     "newer incoming updates",
			existing: &serverRecord{OwnerId: owner, UpdatedAt: base},
			incoming: base.Add(time.Hour),
			want:     pushUpdate,
		},
		{
			name:     "older incoming is dropped",
			existing: &serverRecord{OwnerId: owner, UpdatedAt: base.Add(time.Hour)},
			incoming: base,
			want:     pushSkipStale,
		},
		{
			name:     "equal timestamps favor the server",
			existing: &serverRecord{OwnerId: owner, UpdatedAt: base},
			incoming: base,
			want:     pushSkipStale,
		},
		{
			name:     "millisecond edge still applies",
			existing: &serverRecord{OwnerId: owner, UpdatedAt: base},
			incoming: base.Add(time.Millisecond),
			want:     pushUpdate,
		},
		{
			name:     "foreign owner is skipped even when newer",
			existing: &serverRecord{OwnerId: stranger, UpdatedAt: base},
			incoming: base.Add(time.Hour),
			want:     pushSkipForeign,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decidePush(owner, tt.existing, tt.incoming)
			assert.Equal(t, tt.want, got)
		})
	}
}
