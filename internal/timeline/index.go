// Package timeline provides pure lookups and time helpers for replaying a
// recording's timeline: resolving which photo event and transcript segment
// belong to a given playback position.
package timeline

import (
	"math"
	"sort"

	"github.com/stwalsh4118/relisten/internal/models"
)

// SanitizeEvents filters out malformed events (negative or non-finite offsets)
// and returns the remainder sorted ascending by offset. The sort is stable so
// events sharing an offset keep their original order; tie order is
// deterministic but carries no meaning beyond that.
//
// The input slice is not modified.
func SanitizeEvents(events []*models.TimelineEvent) []*models.TimelineEvent {
	sanitized := make([]*models.TimelineEvent, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if e.OffsetSeconds < 0 || math.IsNaN(e.OffsetSeconds) || math.IsInf(e.OffsetSeconds, 0) {
			// Malformed offsets are dropped at load time, never fatal
			continue
		}
		sanitized = append(sanitized, e)
	}

	sort.SliceStable(sanitized, func(i, j int) bool {
		return sanitized[i].OffsetSeconds < sanitized[j].OffsetSeconds
	})

	return sanitized
}

// ActiveEvent returns the event with the greatest offset <= t, or nil if no
// event has been reached yet (t before the first event, or empty list).
//
// Events must be pre-sorted ascending by offset (see SanitizeEvents). The scan
// is a forward linear pass that stops at the first offset beyond t; timelines
// in this domain are small, so O(n) is fine and avoids binary-search edge
// cases. No side effects.
func ActiveEvent(sorted []*models.TimelineEvent, t float64) *models.TimelineEvent {
	var active *models.TimelineEvent
	for _, e := range sorted {
		if e.OffsetSeconds > t {
			break
		}
		active = e
	}
	return active
}

// ActiveSegment returns the first segment with start <= t <= end, or nil if
// none contains t. Segments need not be pre-sorted; first match wins, so if
// segments ever overlap the result depends on list order.
func ActiveSegment(segments []*models.TranscriptSegment, t float64) *models.TranscriptSegment {
	for _, seg := range segments {
		if seg == nil {
			continue
		}
		if seg.Contains(t) {
			return seg
		}
	}
	return nil
}
