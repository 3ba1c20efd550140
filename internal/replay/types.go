package replay

// DriverState represents the sampling state of a playback position driver
type DriverState int

const (
	// StateIdle indicates playback is paused and no sampling is happening
	StateIdle DriverState = iota
	// StateSampling indicates playback is active and position samples are
	// being forwarded through the pipeline at the throttled rate
	StateSampling
)

// String returns the string representation of DriverState
func (s DriverState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	default:
		return "unknown"
	}
}
