package replay

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/relisten/internal/logger"
	"github.com/stwalsh4118/relisten/internal/models"
	"github.com/stwalsh4118/relisten/internal/timeline"
)

const (
	// defaultSampleInterval bounds how often raw position updates are
	// forwarded through the pipeline
	defaultSampleInterval = 100 * time.Millisecond

	// defaultRefreshInterval paces the tick that flushes a throttled sample
	// once the window elapses and retires expired popups, standing in for the
	// host's display-refresh callback
	defaultRefreshInterval = 16 * time.Millisecond
)

// Driver bridges host-delivered playback position updates to the seek/reset
// policy, the event index and the popup scheduler. It is a two-state machine:
// Idle while paused (no ticking at all) and Sampling while playing, where a
// refresh ticker flushes pending samples once the throttle window opens.
//
// All pipeline steps run synchronously under a single mutex; position updates
// are processed in arrival order.
type Driver struct {
	session   *models.ReplaySession
	scheduler *Scheduler
	events    []*models.TimelineEvent // sanitized, sorted ascending by offset
	eventByID map[uuid.UUID]*models.TimelineEvent
	segments  []*models.TranscriptSegment

	clock           Clock
	gate            *timeline.Gate
	refreshInterval time.Duration

	pending  *float64 // most recent raw position awaiting the throttle window
	state    DriverState
	stopChan chan struct{}
	tickDone chan struct{}
	closed   bool
	mu       sync.Mutex
}

// NewDriver creates a driver for a replay session. Events must already be
// sanitized and sorted (see timeline.SanitizeEvents). Zero intervals fall back
// to the defaults; a nil clock falls back to the system clock.
func NewDriver(
	session *models.ReplaySession,
	events []*models.TimelineEvent,
	segments []*models.TranscriptSegment,
	clock Clock,
	sampleInterval time.Duration,
	refreshInterval time.Duration,
) *Driver {
	if clock == nil {
		clock = SystemClock
	}
	if sampleInterval <= 0 {
		sampleInterval = defaultSampleInterval
	}
	if refreshInterval <= 0 {
		refreshInterval = defaultRefreshInterval
	}

	eventByID := make(map[uuid.UUID]*models.TimelineEvent, len(events))
	for _, e := range events {
		eventByID[e.ID] = e
	}

	return &Driver{
		session:         session,
		scheduler:       NewScheduler(session, events),
		events:          events,
		eventByID:       eventByID,
		segments:        segments,
		clock:           clock,
		gate:            timeline.NewGate(sampleInterval),
		refreshInterval: refreshInterval,
		state:           StateIdle,
	}
}

// Session returns the session this driver feeds
func (d *Driver) Session() *models.ReplaySession {
	return d.session
}

// State returns the current sampling state
func (d *Driver) State() DriverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// UpdatePosition handles a host position/play-state notification. While
// playing, the position is forwarded through the throttled pipeline; while
// paused, the position is still reconciled (seeks are orthogonal to the
// sampling state) but no popup triggers are evaluated.
func (d *Driver) UpdatePosition(position, duration float64, playing bool) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrSessionClosed
	}

	if duration > 0 {
		d.session.SetDuration(duration)
	}
	d.session.UpdateLastAccess()

	if playing {
		d.session.SetPlaying(true)
		if d.state == StateIdle {
			d.startSamplingLocked()
		}
		d.ingestLocked(position)
		d.mu.Unlock()
		return nil
	}

	// Paused: reconcile the position synchronously, then stop sampling
	d.reconcileLocked(position)
	d.session.SetPlaying(false)
	stop, done := d.stopSamplingLocked()
	d.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

// Play transitions Idle -> Sampling and marks the host as playing
func (d *Driver) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrSessionClosed
	}

	d.session.SetPlaying(true)
	d.session.UpdateLastAccess()
	if d.state == StateIdle {
		d.startSamplingLocked()
	}
	return nil
}

// Pause transitions Sampling -> Idle and stops all ticking
func (d *Driver) Pause() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrSessionClosed
	}

	d.session.SetPlaying(false)
	d.session.UpdateLastAccess()
	stop, done := d.stopSamplingLocked()
	d.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

// SeekTo jumps playback to target and resumes playback if paused. Seeking in
// this product means "jump to and watch from here", so seek and playback
// resumption are coupled.
func (d *Driver) SeekTo(target float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrSessionClosed
	}

	d.reconcileLocked(target)
	d.session.UpdateLastAccess()
	d.session.SetPlaying(true)
	if d.state == StateIdle {
		d.startSamplingLocked()
	}
	return nil
}

// DismissPopup hides the active popup without allowing it to re-surface
func (d *Driver) DismissPopup() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrSessionClosed
	}
	d.session.UpdateLastAccess()
	return d.scheduler.Dismiss()
}

// ExpandPopup promotes the active popup to a pinned view
func (d *Driver) ExpandPopup() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrSessionClosed
	}
	d.session.UpdateLastAccess()
	return d.scheduler.Expand()
}

// Close tears the driver down: sampling stops, the pending sample and hide
// deadline are dropped, and every subsequent call returns ErrSessionClosed.
// Because hides are deadline values rather than timer callbacks, nothing can
// fire after Close returns.
func (d *Driver) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.pending = nil
	stop, done := d.stopSamplingLocked()
	d.session.ClearActivePopup()
	d.session.Close()
	d.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	logger.Log.Debug().
		Str("session_id", d.session.ID.String()).
		Msg("Replay driver closed")
}

// startSamplingLocked arms the refresh ticker. Caller must hold d.mu.
func (d *Driver) startSamplingLocked() {
	d.state = StateSampling
	d.gate.Reset()
	d.stopChan = make(chan struct{})
	d.tickDone = make(chan struct{})
	go d.runTicker(d.stopChan, d.tickDone)
}

// stopSamplingLocked disarms the ticker and returns its channels; the caller
// closes stop and waits on done after releasing d.mu. Caller must hold d.mu.
func (d *Driver) stopSamplingLocked() (stop, done chan struct{}) {
	if d.state != StateSampling {
		return nil, nil
	}
	d.state = StateIdle
	d.pending = nil
	stop, done = d.stopChan, d.tickDone
	d.stopChan, d.tickDone = nil, nil
	return stop, done
}

// runTicker paces sample flushing while the driver is Sampling
func (d *Driver) runTicker(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

// tick flushes a pending sample once the throttle window has elapsed and
// retires an expired popup even when no new sample arrived
func (d *Driver) tick() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.state != StateSampling {
		return
	}

	now := d.clock.Now()
	if d.pending != nil && d.gate.Allow(now) {
		position := *d.pending
		d.pending = nil
		d.stepLocked(now, position)
		return
	}

	d.scheduler.expireHide(now)
}

// ingestLocked admits a raw position sample through the throttle gate or
// parks it for the next tick. Caller must hold d.mu.
func (d *Driver) ingestLocked(position float64) {
	now := d.clock.Now()
	if d.gate.Allow(now) {
		d.pending = nil
		d.stepLocked(now, position)
		return
	}
	p := position
	d.pending = &p
}

// stepLocked runs the full pipeline for one admitted sample: seek
// reconciliation, position update, index reads, scheduler advance.
// Caller must hold d.mu.
func (d *Driver) stepLocked(now time.Time, position float64) {
	position = timeline.Clamp(position, 0, d.session.GetDuration())
	d.scheduler.ReconcileSeek(d.session.GetCurrentTime(), position)
	d.session.SetCurrentTime(position)
	d.resolveLocked(position)
	d.scheduler.Advance(now, position)
}

// reconcileLocked applies a position change without evaluating popup triggers,
// used while paused and for manual seeks. Caller must hold d.mu.
func (d *Driver) reconcileLocked(position float64) {
	position = timeline.Clamp(position, 0, d.session.GetDuration())
	d.scheduler.ReconcileSeek(d.session.GetCurrentTime(), position)
	d.session.SetCurrentTime(position)
	d.resolveLocked(position)
}

// resolveLocked recomputes the pure index reads for a position.
// Caller must hold d.mu.
func (d *Driver) resolveLocked(position float64) {
	if e := timeline.ActiveEvent(d.events, position); e != nil {
		id := e.ID
		d.session.SetActiveEvent(&id)
	} else {
		d.session.SetActiveEvent(nil)
	}
	d.session.SetActiveSegment(timeline.ActiveSegment(d.segments, position))
}

// lookupEvent returns the loaded event for an id, or nil
func (d *Driver) lookupEvent(id *uuid.UUID) *models.TimelineEvent {
	if id == nil {
		return nil
	}
	return d.eventByID[*id]
}
