package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stwalsh4118/relisten/internal/models"
	"gorm.io/gorm"
)

// TranscriptSegmentRepository handles database operations for transcript segments
type TranscriptSegmentRepository struct {
	db *DB
}

// NewTranscriptSegmentRepository creates a new transcript segment repository
func NewTranscriptSegmentRepository(db *DB) *TranscriptSegmentRepository {
	return &TranscriptSegmentRepository{db: db}
}

// CreateBatch inserts transcript segments atomically; transcription delivers
// a recording's segments as one unit and partial writes would leave gaps
func (r *TranscriptSegmentRepository) CreateBatch(ctx context.Context, segments []*models.TranscriptSegment) error {
	if len(segments) == 0 {
		return nil
	}
	return r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		for _, seg := range segments {
			if err := tx.Create(seg).Error; err != nil {
				return fmt.Errorf("failed to create transcript segment: %w", MapGormError(err))
			}
		}
		return nil
	})
}

// ListByRecording retrieves a recording's transcript segments ordered by start time
func (r *TranscriptSegmentRepository) ListByRecording(ctx context.Context, recordingID uuid.UUID) ([]*models.TranscriptSegment, error) {
	var segments []*models.TranscriptSegment
	result := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID.String()).
		Order("start_seconds ASC").
		Find(&segments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list transcript segments: %w", MapGormError(result.Error))
	}
	return segments, nil
}

// DeleteByRecording removes all transcript segments for a recording
func (r *TranscriptSegmentRepository) DeleteByRecording(ctx context.Context, recordingID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID.String()).
		Delete(&models.TranscriptSegment{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete transcript segments: %w", MapGormError(result.Error))
	}
	return nil
}
