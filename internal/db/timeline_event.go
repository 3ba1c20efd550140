package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stwalsh4118/relisten/internal/models"
)

// TimelineEventRepository handles database operations for timeline events
type TimelineEventRepository struct {
	db *DB
}

// NewTimelineEventRepository creates a new timeline event repository
func NewTimelineEventRepository(db *DB) *TimelineEventRepository {
	return &TimelineEventRepository{db: db}
}

// Create inserts a new timeline event. A second event at the same offset of
// the same recording violates the unique constraint and maps to ErrDuplicate.
func (r *TimelineEventRepository) Create(ctx context.Context, event *models.TimelineEvent) error {
	result := r.db.WithContext(ctx).Create(event)
	if result.Error != nil {
		return fmt.Errorf("failed to create timeline event: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a timeline event by its UUID
func (r *TimelineEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimelineEvent, error) {
	var event models.TimelineEvent
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&event)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &event, nil
}

// ListByRecording retrieves a recording's timeline events ordered ascending
// by offset, matching the order the replay engine requires
func (r *TimelineEventRepository) ListByRecording(ctx context.Context, recordingID uuid.UUID) ([]*models.TimelineEvent, error) {
	var events []*models.TimelineEvent
	result := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID.String()).
		Order("offset_seconds ASC").
		Find(&events)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list timeline events: %w", MapGormError(result.Error))
	}
	return events, nil
}

// Delete removes a timeline event by its UUID
func (r *TimelineEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.TimelineEvent{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete timeline event: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
