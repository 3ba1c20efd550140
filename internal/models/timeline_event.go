package models

import (
	"time"

	"github.com/google/uuid"
)

// TimelineEvent represents a photo anchored at a playback offset within a recording.
// Events are immutable once loaded for a replay session.
type TimelineEvent struct {
	ID            uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	RecordingID   uuid.UUID `json:"recording_id" gorm:"type:text;not null;column:recording_id" validate:"required"`
	OffsetSeconds float64   `json:"offset_seconds" gorm:"type:real;not null;column:offset_seconds" validate:"gte=0"`
	AssetURL      string    `json:"asset_url" gorm:"type:text;not null;column:asset_url" validate:"required"`
	Caption       *string   `json:"caption,omitempty" gorm:"type:text;column:caption"`
	CreatedAt     time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewTimelineEvent creates a new TimelineEvent with generated UUID and timestamp
func NewTimelineEvent(recordingID uuid.UUID, offsetSeconds float64, assetURL string) *TimelineEvent {
	return &TimelineEvent{
		ID:            uuid.New(),
		RecordingID:   recordingID,
		OffsetSeconds: offsetSeconds,
		AssetURL:      assetURL,
		CreatedAt:     time.Now().UTC(),
	}
}
