package replay

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/relisten/internal/models"
)

// fakeClock is a manually advanced Clock for deterministic driver tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Helper function to build a driver over events at the given offsets. The
// refresh interval is set far out so the background ticker never interferes;
// tests drive ticks by hand.
func createTestDriver(duration float64, offsets ...float64) (*Driver, *fakeClock) {
	recordingID := uuid.New()
	events := make([]*models.TimelineEvent, 0, len(offsets))
	for _, off := range offsets {
		events = append(events, models.NewTimelineEvent(recordingID, off, "photos/test.jpg"))
	}
	session := models.NewReplaySession(recordingID, duration)
	clock := newFakeClock()
	return NewDriver(session, events, nil, clock, 100*time.Millisecond, time.Hour), clock
}

func TestDriver_StartsIdle(t *testing.T) {
	d, _ := createTestDriver(60)
	defer d.Close()

	assert.Equal(t, StateIdle, d.State())
	assert.False(t, d.Session().IsPlaying())
}

func TestDriver_FirstSampleProcessedImmediately(t *testing.T) {
	d, _ := createTestDriver(60)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(1.0, 60, true))

	assert.Equal(t, StateSampling, d.State())
	assert.Equal(t, 1.0, d.Session().GetCurrentTime())
}

func TestDriver_ThrottleCoalescesRapidSamples(t *testing.T) {
	d, clock := createTestDriver(60)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(1.0, 60, true))
	require.NoError(t, d.UpdatePosition(1.02, 60, true))
	require.NoError(t, d.UpdatePosition(1.05, 60, true))

	// Inside the throttle window only the first sample lands
	assert.Equal(t, 1.0, d.Session().GetCurrentTime())

	clock.Advance(100 * time.Millisecond)
	d.tick()

	// The tick flushes the most recent parked sample, not the intermediates
	assert.Equal(t, 1.05, d.Session().GetCurrentTime())
}

func TestDriver_TickRetiresExpiredPopupWithoutNewSample(t *testing.T) {
	d, clock := createTestDriver(60, 10)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(10.0, 60, true))
	require.NotNil(t, d.Session().GetActivePopup())

	clock.Advance(6 * time.Second)
	d.tick()

	assert.Nil(t, d.Session().GetActivePopup())
}

func TestDriver_PauseStopsSamplingAndDropsPendingSample(t *testing.T) {
	d, clock := createTestDriver(60)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(1.0, 60, true))
	require.NoError(t, d.UpdatePosition(1.5, 60, true)) // parked
	require.NoError(t, d.Pause())

	assert.Equal(t, StateIdle, d.State())
	assert.False(t, d.Session().IsPlaying())

	// Resume and tick past the window: the parked sample must not resurface
	require.NoError(t, d.Play())
	clock.Advance(200 * time.Millisecond)
	d.tick()

	assert.Equal(t, 1.0, d.Session().GetCurrentTime())
}

func TestDriver_PausedUpdateStillReconcilesPosition(t *testing.T) {
	d, _ := createTestDriver(60, 10, 30)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(35, 60, false))

	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, 35.0, d.Session().GetCurrentTime())

	// Index reads track the paused position, but no popup triggers
	active := d.Session().GetActiveEvent()
	require.NotNil(t, active)
	assert.Equal(t, d.events[1].ID, *active)
	assert.Nil(t, d.Session().GetActivePopup())
	assert.Equal(t, 0, d.Session().TriggeredCount())
}

func TestDriver_SeekResumesPlayback(t *testing.T) {
	d, _ := createTestDriver(60)
	defer d.Close()

	require.Equal(t, StateIdle, d.State())

	require.NoError(t, d.SeekTo(42))

	assert.Equal(t, StateSampling, d.State())
	assert.True(t, d.Session().IsPlaying())
	assert.Equal(t, 42.0, d.Session().GetCurrentTime())
}

func TestDriver_BackwardSeekClearsTriggeredState(t *testing.T) {
	d, _ := createTestDriver(60, 10)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(10.0, 60, true))
	require.Equal(t, 1, d.Session().TriggeredCount())

	require.NoError(t, d.SeekTo(0))

	assert.Equal(t, 0, d.Session().TriggeredCount())
	assert.Nil(t, d.Session().GetActivePopup())
	assert.Equal(t, 0.0, d.Session().GetCurrentTime())
}

func TestDriver_ClampsPositionToDuration(t *testing.T) {
	d, _ := createTestDriver(60)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(75, 0, true))
	assert.Equal(t, 60.0, d.Session().GetCurrentTime())

	require.NoError(t, d.SeekTo(-5))
	assert.Equal(t, 0.0, d.Session().GetCurrentTime())
}

func TestDriver_CloseCancelsPendingHide(t *testing.T) {
	d, clock := createTestDriver(60, 10)

	require.NoError(t, d.UpdatePosition(10.0, 60, true))
	session := d.Session()
	require.NotNil(t, session.GetPendingHideAt())

	d.Close()

	assert.Nil(t, session.GetActivePopup())
	assert.Nil(t, session.GetPendingHideAt())
	assert.True(t, session.IsClosed())

	// Nothing fires after teardown, even past the old deadline
	clock.Advance(time.Minute)
	d.tick()
	assert.ErrorIs(t, d.UpdatePosition(11, 60, true), ErrSessionClosed)
}

func TestDriver_CloseIsIdempotent(t *testing.T) {
	d, _ := createTestDriver(60)

	d.Close()
	d.Close()

	assert.True(t, d.Session().IsClosed())
}

func TestDriver_OperationsAfterCloseFail(t *testing.T) {
	d, _ := createTestDriver(60)
	d.Close()

	assert.ErrorIs(t, d.Play(), ErrSessionClosed)
	assert.ErrorIs(t, d.Pause(), ErrSessionClosed)
	assert.ErrorIs(t, d.SeekTo(10), ErrSessionClosed)
	assert.ErrorIs(t, d.DismissPopup(), ErrSessionClosed)
	assert.ErrorIs(t, d.ExpandPopup(), ErrSessionClosed)
}

func TestDriver_ExpandThenDismiss(t *testing.T) {
	d, _ := createTestDriver(60, 10)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(10.0, 60, true))
	require.NoError(t, d.ExpandPopup())

	assert.Nil(t, d.Session().GetActivePopup())
	assert.NotNil(t, d.Session().GetPinnedPopup())

	// The popup is pinned now, so there is nothing left to dismiss
	assert.ErrorIs(t, d.DismissPopup(), ErrNoActivePopup)
}

func TestDriver_SegmentResolution(t *testing.T) {
	recordingID := uuid.New()
	segments := []*models.TranscriptSegment{
		models.NewTranscriptSegment(recordingID, 0, 5, "hello"),
		models.NewTranscriptSegment(recordingID, 5.5, 12, "world"),
	}
	session := models.NewReplaySession(recordingID, 60)
	d := NewDriver(session, nil, segments, newFakeClock(), 100*time.Millisecond, time.Hour)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(6, 60, false))
	seg := session.GetActiveSegment()
	require.NotNil(t, seg)
	assert.Equal(t, "world", seg.Text)

	require.NoError(t, d.UpdatePosition(5.2, 60, false))
	assert.Nil(t, session.GetActiveSegment())
}

func TestDriver_Snapshot(t *testing.T) {
	d, _ := createTestDriver(90, 10)
	defer d.Close()

	require.NoError(t, d.UpdatePosition(10.0, 90, true))

	snap := d.Snapshot()

	assert.Equal(t, d.Session().ID, snap.SessionID)
	assert.Equal(t, 10.0, snap.CurrentTime)
	assert.Equal(t, "00:10", snap.Clock)
	assert.Equal(t, 90.0, snap.Duration)
	assert.True(t, snap.Playing)
	assert.Equal(t, "sampling", snap.DriverState)
	require.NotNil(t, snap.ActivePopup)
	assert.Equal(t, d.events[0].ID, snap.ActivePopup.EventID)
	assert.Equal(t, "photos/test.jpg", snap.ActivePopup.AssetURL)
	assert.Nil(t, snap.PinnedPopup)
}
