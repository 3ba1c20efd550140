package replay

import (
	"math"
	"time"

	"github.com/stwalsh4118/relisten/internal/logger"
	"github.com/stwalsh4118/relisten/internal/models"
	"github.com/stwalsh4118/relisten/internal/timeline"
)

const (
	// triggerToleranceSeconds is the ± band around an event's offset within
	// which a sample counts as a match for triggering
	triggerToleranceSeconds = 0.5

	// Display duration bounds: an auto-surfaced popup stays up long enough to
	// register but hides before the next event normally needs the screen
	minDisplaySeconds     = 1.0
	maxDisplaySeconds     = 5.0
	defaultDisplaySeconds = 5.0
)

// Scheduler decides, on every throttled position sample while playing,
// whether a new popup should surface and whether the current one should hide.
//
// The pending hide is stored on the session as a deadline value and checked on
// every sample and refresh tick; there are no timer callbacks, so nothing can
// fire after the session is torn down.
type Scheduler struct {
	session *models.ReplaySession
	events  []*models.TimelineEvent // sanitized, sorted ascending by offset
}

// NewScheduler creates a scheduler bound to a session and its sanitized,
// offset-sorted event list
func NewScheduler(session *models.ReplaySession, events []*models.TimelineEvent) *Scheduler {
	return &Scheduler{
		session: session,
		events:  events,
	}
}

// Advance processes one position sample taken at wall time now. It first
// retires an expired popup, then evaluates the trigger rule: the earliest
// event in list order within the tolerance band that has not yet triggered
// surfaces, records itself in the triggered set, and schedules its hide
// deadline. Each event triggers at most once between scheduler resets.
func (sc *Scheduler) Advance(now time.Time, t float64) {
	sc.expireHide(now)

	for i, e := range sc.events {
		if e.OffsetSeconds > t+triggerToleranceSeconds {
			break
		}
		if math.Abs(t-e.OffsetSeconds) > triggerToleranceSeconds {
			continue
		}
		if sc.session.IsTriggered(e.ID) {
			continue
		}

		hideAfter := sc.displayDuration(i)
		// Last trigger wins: MarkTriggered supersedes any pending hide, popups
		// do not stack
		sc.session.MarkTriggered(e.ID, now.Add(hideAfter))

		logger.Log.Debug().
			Str("session_id", sc.session.ID.String()).
			Str("event_id", e.ID.String()).
			Float64("offset_seconds", e.OffsetSeconds).
			Float64("position", t).
			Dur("hide_after", hideAfter).
			Msg("Popup triggered")
		return
	}
}

// expireHide retires the active popup once its hide deadline has passed
func (sc *Scheduler) expireHide(now time.Time) {
	deadline := sc.session.GetPendingHideAt()
	if deadline == nil || now.Before(*deadline) {
		return
	}

	sc.session.ClearActivePopup()

	logger.Log.Debug().
		Str("session_id", sc.session.ID.String()).
		Msg("Popup hidden after display duration")
}

// displayDuration computes how long the event at index i stays visible:
// the gap to the next event clamped to [min, max], or the default when no
// event follows.
func (sc *Scheduler) displayDuration(i int) time.Duration {
	seconds := defaultDisplaySeconds
	if i+1 < len(sc.events) {
		gap := sc.events[i+1].OffsetSeconds - sc.events[i].OffsetSeconds
		seconds = timeline.Clamp(gap, minDisplaySeconds, maxDisplaySeconds)
	}
	return time.Duration(seconds * float64(time.Second))
}

// Dismiss hides the active popup immediately and cancels its pending hide.
// The triggered set is untouched, so the event will not auto-surface again
// unless a qualifying backward seek resets the scheduler.
func (sc *Scheduler) Dismiss() error {
	if sc.session.GetActivePopup() == nil {
		return ErrNoActivePopup
	}
	sc.session.ClearActivePopup()
	return nil
}

// Expand promotes the active popup to a manually pinned view and cancels its
// pending hide. Like Dismiss, the triggered set is untouched.
func (sc *Scheduler) Expand() error {
	if !sc.session.PinActivePopup() {
		return ErrNoActivePopup
	}
	return nil
}

// Reset clears the triggered set, the active popup and the pending hide.
// Used by the seek/reset policy and session teardown.
func (sc *Scheduler) Reset() {
	sc.session.ResetScheduler()
}
