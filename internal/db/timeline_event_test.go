package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/relisten/internal/models"
)

func TestTimelineEventRepository_CreateAndList(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	recording := models.NewRecording("With photos", 120)
	require.NoError(t, repos.Recordings.Create(ctx, recording))

	// Insert out of order; the list comes back sorted by offset
	for _, off := range []float64{60, 10, 30} {
		event := models.NewTimelineEvent(recording.ID, off, "photos/test.jpg")
		require.NoError(t, repos.TimelineEvents.Create(ctx, event))
	}

	events, err := repos.TimelineEvents.ListByRecording(ctx, recording.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, 10.0, events[0].OffsetSeconds)
	assert.Equal(t, 30.0, events[1].OffsetSeconds)
	assert.Equal(t, 60.0, events[2].OffsetSeconds)
}

func TestTimelineEventRepository_DuplicateOffset(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	recording := models.NewRecording("With photos", 120)
	require.NoError(t, repos.Recordings.Create(ctx, recording))

	require.NoError(t, repos.TimelineEvents.Create(ctx, models.NewTimelineEvent(recording.ID, 10, "photos/a.jpg")))

	err := repos.TimelineEvents.Create(ctx, models.NewTimelineEvent(recording.ID, 10, "photos/b.jpg"))
	assert.True(t, IsDuplicate(err))

	// The same offset on another recording is fine
	other := models.NewRecording("Other", 120)
	require.NoError(t, repos.Recordings.Create(ctx, other))
	assert.NoError(t, repos.TimelineEvents.Create(ctx, models.NewTimelineEvent(other.ID, 10, "photos/c.jpg")))
}

func TestTimelineEventRepository_Delete(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	recording := models.NewRecording("With photos", 120)
	require.NoError(t, repos.Recordings.Create(ctx, recording))

	event := models.NewTimelineEvent(recording.ID, 10, "photos/a.jpg")
	require.NoError(t, repos.TimelineEvents.Create(ctx, event))

	require.NoError(t, repos.TimelineEvents.Delete(ctx, event.ID))

	_, err := repos.TimelineEvents.GetByID(ctx, event.ID)
	assert.True(t, IsNotFound(err))

	assert.True(t, IsNotFound(repos.TimelineEvents.Delete(ctx, event.ID)))
}

func TestTranscriptSegmentRepository_BatchAndList(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	recording := models.NewRecording("With transcript", 120)
	require.NoError(t, repos.Recordings.Create(ctx, recording))

	segments := []*models.TranscriptSegment{
		models.NewTranscriptSegment(recording.ID, 30, 45, "later"),
		models.NewTranscriptSegment(recording.ID, 0, 5, "first"),
	}
	require.NoError(t, repos.TranscriptSegments.CreateBatch(ctx, segments))

	// Empty batch is a no-op, not an error
	require.NoError(t, repos.TranscriptSegments.CreateBatch(ctx, nil))

	got, err := repos.TranscriptSegments.ListByRecording(ctx, recording.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "later", got[1].Text)
}

func TestTranscriptSegmentRepository_DeleteByRecording(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	recording := models.NewRecording("With transcript", 120)
	require.NoError(t, repos.Recordings.Create(ctx, recording))
	require.NoError(t, repos.TranscriptSegments.CreateBatch(ctx, []*models.TranscriptSegment{
		models.NewTranscriptSegment(recording.ID, 0, 5, "hello"),
	}))

	require.NoError(t, repos.TranscriptSegments.DeleteByRecording(ctx, recording.ID))

	got, err := repos.TranscriptSegments.ListByRecording(ctx, recording.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
