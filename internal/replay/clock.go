package replay

import "time"

// Clock supplies wall-clock time to the scheduler and driver. Production code
// uses SystemClock; tests substitute a fake to drive deterministic deadlines.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock is the real wall clock
var SystemClock Clock = systemClock{}
