package models

import (
	"time"

	"github.com/google/uuid"
)

// Recording represents a captured note-taking session with an audio track
type Recording struct {
	ID              uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Title           string    `json:"title" gorm:"type:text;not null;column:title" validate:"required,min=1,max=255"`
	DurationSeconds float64   `json:"duration_seconds" gorm:"type:real;not null;default:0;column:duration_seconds" validate:"gte=0"`
	StartedAt       time.Time `json:"started_at" gorm:"type:datetime;not null;column:started_at"`
	CreatedAt       time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewRecording creates a new Recording with generated UUID and timestamps
func NewRecording(title string, durationSeconds float64) *Recording {
	now := time.Now().UTC()
	return &Recording{
		ID:              uuid.New(),
		Title:           title,
		DurationSeconds: durationSeconds,
		StartedAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
