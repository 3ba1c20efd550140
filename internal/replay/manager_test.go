package replay

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/relisten/internal/config"
	"github.com/stwalsh4118/relisten/internal/db"
	"github.com/stwalsh4118/relisten/internal/models"
)

// setupTestDB creates a test database in memory
func setupTestDB(t *testing.T) (*db.DB, *db.Repositories, func()) {
	t.Helper()

	database, err := db.New(":memory:")
	require.NoError(t, err)

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	err = db.RunMigrations(sqlDB, "file://../../migrations")
	require.NoError(t, err)

	repos := db.NewRepositories(database)

	cleanup := func() {
		_ = database.Close()
	}

	return database, repos, cleanup
}

func testReplayConfig() *config.ReplayConfig {
	return &config.ReplayConfig{
		SampleInterval:     100 * time.Millisecond,
		RefreshInterval:    16 * time.Millisecond,
		CleanupInterval:    60,
		GracePeriodSeconds: 300,
	}
}

// createTestRecording stores a recording with timeline events at the given offsets
func createTestRecording(t *testing.T, repos *db.Repositories, duration float64, offsets ...float64) *models.Recording {
	t.Helper()

	ctx := context.Background()
	recording := models.NewRecording("Test Recording", duration)
	require.NoError(t, repos.Recordings.Create(ctx, recording))

	for _, off := range offsets {
		event := models.NewTimelineEvent(recording.ID, off, "photos/test.jpg")
		require.NoError(t, repos.TimelineEvents.Create(ctx, event))
	}

	return recording
}

func TestManager_StartReplay(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	manager := NewManager(repos, testReplayConfig())
	defer manager.Stop()

	recording := createTestRecording(t, repos, 120, 30, 10, -5)

	session, err := manager.StartReplay(context.Background(), recording.ID)
	require.NoError(t, err)

	assert.Equal(t, recording.ID, session.RecordingID)
	assert.Equal(t, 120.0, session.GetDuration())
	assert.Equal(t, 1, manager.SessionCount())

	driver, ok := manager.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, StateIdle, driver.State())

	// The malformed offset is dropped and the rest arrive sorted
	require.Len(t, driver.events, 2)
	assert.Equal(t, 10.0, driver.events[0].OffsetSeconds)
	assert.Equal(t, 30.0, driver.events[1].OffsetSeconds)
}

func TestManager_StartReplayRecordingNotFound(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	manager := NewManager(repos, testReplayConfig())
	defer manager.Stop()

	_, err := manager.StartReplay(context.Background(), uuid.New())

	require.Error(t, err)
	assert.True(t, db.IsNotFound(err))
	assert.Equal(t, 0, manager.SessionCount())
}

func TestManager_StartReplayLoadsSegments(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	manager := NewManager(repos, testReplayConfig())
	defer manager.Stop()

	recording := createTestRecording(t, repos, 60)
	segments := []*models.TranscriptSegment{
		models.NewTranscriptSegment(recording.ID, 0, 5, "hello"),
		models.NewTranscriptSegment(recording.ID, 5, 12, "world"),
	}
	require.NoError(t, repos.TranscriptSegments.CreateBatch(context.Background(), segments))

	session, err := manager.StartReplay(context.Background(), recording.ID)
	require.NoError(t, err)

	driver, ok := manager.Get(session.ID)
	require.True(t, ok)
	assert.Len(t, driver.segments, 2)
}

func TestManager_StopReplay(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	manager := NewManager(repos, testReplayConfig())
	defer manager.Stop()

	recording := createTestRecording(t, repos, 60, 10)
	session, err := manager.StartReplay(context.Background(), recording.ID)
	require.NoError(t, err)

	require.NoError(t, manager.StopReplay(session.ID))

	_, ok := manager.Get(session.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, manager.SessionCount())
	assert.True(t, session.IsClosed())

	assert.ErrorIs(t, manager.StopReplay(session.ID), ErrSessionNotFound)
}

func TestManager_StopTearsDownAllSessions(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	manager := NewManager(repos, testReplayConfig())

	recording := createTestRecording(t, repos, 60, 10)
	first, err := manager.StartReplay(context.Background(), recording.ID)
	require.NoError(t, err)
	second, err := manager.StartReplay(context.Background(), recording.ID)
	require.NoError(t, err)

	manager.Stop()

	assert.Equal(t, 0, manager.SessionCount())
	assert.True(t, first.IsClosed())
	assert.True(t, second.IsClosed())

	_, err = manager.StartReplay(context.Background(), recording.ID)
	assert.ErrorIs(t, err, ErrManagerStopped)
}

func TestManager_StartAfterStopFails(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	manager := NewManager(repos, testReplayConfig())
	require.NoError(t, manager.Start())

	manager.Stop()

	assert.ErrorIs(t, manager.Start(), ErrManagerStopped)
}

func TestManager_CleanupReapsIdlePausedSessions(t *testing.T) {
	_, repos, cleanup := setupTestDB(t)
	defer cleanup()

	cfg := testReplayConfig()
	cfg.GracePeriodSeconds = 0
	manager := NewManager(repos, cfg)
	defer manager.Stop()

	recording := createTestRecording(t, repos, 60, 10)

	idle, err := manager.StartReplay(context.Background(), recording.ID)
	require.NoError(t, err)

	playing, err := manager.StartReplay(context.Background(), recording.ID)
	require.NoError(t, err)
	playingDriver, ok := manager.Get(playing.ID)
	require.True(t, ok)
	require.NoError(t, playingDriver.Play())

	time.Sleep(10 * time.Millisecond)
	manager.performCleanup()

	_, ok = manager.Get(idle.ID)
	assert.False(t, ok, "idle paused session should be reaped")
	_, ok = manager.Get(playing.ID)
	assert.True(t, ok, "playing session must survive cleanup")
}
