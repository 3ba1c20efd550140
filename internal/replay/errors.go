package replay

import "errors"

var (
	// ErrSessionNotFound is returned when no replay session exists for the given id
	ErrSessionNotFound = errors.New("replay session not found")

	// ErrSessionClosed is returned when a command targets a session that has
	// already been torn down
	ErrSessionClosed = errors.New("replay session has been closed")

	// ErrManagerStopped is returned when the replay manager has been shut down
	ErrManagerStopped = errors.New("replay manager has been stopped")

	// ErrNoActivePopup is returned when dismiss/expand is requested and no
	// popup is currently shown
	ErrNoActivePopup = errors.New("no popup is currently shown")
)
