package timeline

import (
	"fmt"
	"math"
	"time"
)

// FormatClock renders a position in seconds as "MM:SS", or "H:MM:SS" once the
// position passes an hour. Negative and non-finite inputs render as "00:00".
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "00:00"
	}

	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Clamp bounds v to the inclusive range [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SecondsAtFraction converts a scrubber fraction (0..1) to a position in
// seconds within a recording of the given duration. The fraction is clamped.
func SecondsAtFraction(fraction, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return Clamp(fraction, 0, 1) * duration
}

// FractionAt converts a position in seconds to a scrubber fraction (0..1)
// within a recording of the given duration.
func FractionAt(t, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return Clamp(t/duration, 0, 1)
}

// Gate rate-limits a stream of samples to at most one per interval. It is a
// plain value with no internal locking; callers that share a Gate across
// goroutines must serialize access themselves.
type Gate struct {
	interval time.Duration
	last     time.Time
}

// NewGate creates a gate that admits at most one sample per interval
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Allow reports whether a sample taken at now should be forwarded, and if so
// records it as the most recent admission. The first sample is always admitted.
func (g *Gate) Allow(now time.Time) bool {
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Ready reports whether the gate would admit a sample at now without
// recording an admission
func (g *Gate) Ready(now time.Time) bool {
	return g.last.IsZero() || now.Sub(g.last) >= g.interval
}

// Reset forgets the last admission so the next sample is admitted immediately
func (g *Gate) Reset() {
	g.last = time.Time{}
}
