package replay

import "github.com/stwalsh4118/relisten/internal/logger"

// seekBackThresholdSeconds separates normal playback drift from a backward
// seek. Movements smaller than this, in either direction, leave scheduler
// state alone.
const seekBackThresholdSeconds = 2.0

// ReconcileSeek applies the seek/reset policy to a position change from
// previous to next. A backward jump exceeding the threshold clears the entire
// triggered set, the active popup and the pending hide, so events ahead of
// the new position can surface again. Forward seeks and sub-threshold
// movements are no-ops. Returns true if the scheduler was reset.
//
// The reset is deliberately coarse: the whole triggered set is cleared rather
// than only the ids whose offsets now lie ahead of the new position, which
// means an event just before the seek target may re-surface. Selective
// re-enabling is not worth the bookkeeping for timelines this small.
func (sc *Scheduler) ReconcileSeek(previous, next float64) bool {
	if next >= previous-seekBackThresholdSeconds {
		return false
	}

	sc.Reset()

	logger.Log.Debug().
		Str("session_id", sc.session.ID.String()).
		Float64("previous", previous).
		Float64("next", next).
		Msg("Backward seek detected, scheduler state reset")

	return true
}
