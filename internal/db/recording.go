package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/relisten/internal/models"
	"gorm.io/gorm"
)

// RecordingRepository handles database operations for recordings
type RecordingRepository struct {
	db *DB
}

// NewRecordingRepository creates a new recording repository
func NewRecordingRepository(db *DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

// Create inserts a new recording
func (r *RecordingRepository) Create(ctx context.Context, recording *models.Recording) error {
	result := r.db.WithContext(ctx).Create(recording)
	if result.Error != nil {
		return fmt.Errorf("failed to create recording: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a recording by its UUID
func (r *RecordingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recording, error) {
	var recording models.Recording
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&recording)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &recording, nil
}

// List retrieves recordings newest first with pagination
func (r *RecordingRepository) List(ctx context.Context, limit, offset int) ([]*models.Recording, error) {
	var recordings []*models.Recording
	query := r.db.WithContext(ctx).Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	result := query.Find(&recordings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", MapGormError(result.Error))
	}
	return recordings, nil
}

// UpdateDuration sets a recording's duration once the audio track length is known
func (r *RecordingRepository) UpdateDuration(ctx context.Context, id uuid.UUID, durationSeconds float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{
			"duration_seconds": durationSeconds,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update recording duration: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a recording together with its timeline events and transcript
// segments in a single transaction
func (r *RecordingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("recording_id = ?", id.String()).Delete(&models.TimelineEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete timeline events: %w", MapGormError(err))
		}
		if err := tx.Where("recording_id = ?", id.String()).Delete(&models.TranscriptSegment{}).Error; err != nil {
			return fmt.Errorf("failed to delete transcript segments: %w", MapGormError(err))
		}

		result := tx.Where("id = ?", id.String()).Delete(&models.Recording{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete recording: %w", MapGormError(result.Error))
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
