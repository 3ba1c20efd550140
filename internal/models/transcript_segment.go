package models

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptSegment represents a transcribed span of a recording's audio track.
// Segments are non-overlapping by construction upstream; lookups only depend on
// the first segment that contains a given position.
type TranscriptSegment struct {
	ID           uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	RecordingID  uuid.UUID `json:"recording_id" gorm:"type:text;not null;column:recording_id" validate:"required"`
	StartSeconds float64   `json:"start_seconds" gorm:"type:real;not null;column:start_seconds" validate:"gte=0"`
	EndSeconds   float64   `json:"end_seconds" gorm:"type:real;not null;column:end_seconds" validate:"gtefield=StartSeconds"`
	Text         string    `json:"text" gorm:"type:text;not null;column:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewTranscriptSegment creates a new TranscriptSegment with generated UUID and timestamp
func NewTranscriptSegment(recordingID uuid.UUID, startSeconds, endSeconds float64, text string) *TranscriptSegment {
	return &TranscriptSegment{
		ID:           uuid.New(),
		RecordingID:  recordingID,
		StartSeconds: startSeconds,
		EndSeconds:   endSeconds,
		Text:         text,
		CreatedAt:    time.Now().UTC(),
	}
}

// Contains reports whether the given playback position falls inside this segment
func (s *TranscriptSegment) Contains(t float64) bool {
	return s.StartSeconds <= t && t <= s.EndSeconds
}
