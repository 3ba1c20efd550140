package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ReplaySession represents an active timeline replay session.
// This is NOT persisted to database, only kept in memory. One session exists
// per loaded timeline and is discarded when the client tears it down (or when
// the idle cleanup reaps it).
//
// Scheduler invariant: ActivePopupID is always a member of the triggered set
// while non-nil. The triggered set only grows during forward playback and is
// cleared by the seek/reset policy.
type ReplaySession struct {
	ID          uuid.UUID `json:"id"`
	RecordingID uuid.UUID `json:"recording_id"`
	StartedAt   time.Time `json:"started_at"`

	// Playback state mirrored from the host player
	CurrentTime float64 `json:"current_time"`
	Duration    float64 `json:"duration"`
	Playing     bool    `json:"playing"`

	// Scheduler state
	Triggered     map[uuid.UUID]bool `json:"-"`
	ActivePopupID *uuid.UUID         `json:"active_popup_id,omitempty"`
	PinnedPopupID *uuid.UUID         `json:"pinned_popup_id,omitempty"`
	PendingHideAt *time.Time         `json:"-"`

	// Resolved outputs from the last processed sample
	ActiveEventID *uuid.UUID         `json:"active_event_id,omitempty"`
	ActiveSegment *TranscriptSegment `json:"active_segment,omitempty"`

	LastAccessTime time.Time `json:"last_access_time"`
	closed         bool
	mu             sync.RWMutex
}

// NewReplaySession creates a new replay session for a recording
func NewReplaySession(recordingID uuid.UUID, durationSeconds float64) *ReplaySession {
	now := time.Now().UTC()
	return &ReplaySession{
		ID:             uuid.New(),
		RecordingID:    recordingID,
		StartedAt:      now,
		Duration:       durationSeconds,
		Triggered:      make(map[uuid.UUID]bool),
		LastAccessTime: now,
	}
}

// GetCurrentTime returns the current playback position (thread-safe)
func (s *ReplaySession) GetCurrentTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentTime
}

// SetCurrentTime sets the current playback position (thread-safe)
func (s *ReplaySession) SetCurrentTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentTime = t
}

// GetDuration returns the recording duration (thread-safe)
func (s *ReplaySession) GetDuration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Duration
}

// SetDuration sets the recording duration (thread-safe)
func (s *ReplaySession) SetDuration(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d >= 0 {
		s.Duration = d
	}
}

// IsPlaying returns whether the host reports active playback (thread-safe)
func (s *ReplaySession) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Playing
}

// SetPlaying sets the playing flag (thread-safe)
func (s *ReplaySession) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Playing = playing
}

// MarkTriggered records that an event has auto-surfaced and makes it the
// active popup with the given hide deadline (thread-safe).
// A previously pending hide is superseded, popups do not stack.
func (s *ReplaySession) MarkTriggered(eventID uuid.UUID, hideAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := eventID
	s.Triggered[id] = true
	s.ActivePopupID = &id
	s.PendingHideAt = &hideAt
}

// IsTriggered reports whether an event has already auto-surfaced (thread-safe)
func (s *ReplaySession) IsTriggered(eventID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Triggered[eventID]
}

// TriggeredCount returns the number of events that have auto-surfaced (thread-safe)
func (s *ReplaySession) TriggeredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Triggered)
}

// GetActivePopup returns the currently shown popup event id, or nil (thread-safe)
func (s *ReplaySession) GetActivePopup() *uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ActivePopupID
}

// ClearActivePopup hides the popup and drops the pending hide deadline without
// touching the triggered set, so a dismissed event does not re-surface (thread-safe)
func (s *ReplaySession) ClearActivePopup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ActivePopupID = nil
	s.PendingHideAt = nil
}

// PinActivePopup promotes the auto-surfaced popup to a manually pinned view
// and cancels its hide deadline (thread-safe). Returns false if no popup is shown.
func (s *ReplaySession) PinActivePopup() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ActivePopupID == nil {
		return false
	}
	s.PinnedPopupID = s.ActivePopupID
	s.ActivePopupID = nil
	s.PendingHideAt = nil
	return true
}

// GetPinnedPopup returns the manually pinned popup event id, or nil (thread-safe)
func (s *ReplaySession) GetPinnedPopup() *uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.PinnedPopupID
}

// ClearPinnedPopup drops the pinned view (thread-safe)
func (s *ReplaySession) ClearPinnedPopup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PinnedPopupID = nil
}

// GetPendingHideAt returns the pending hide deadline, or nil (thread-safe)
func (s *ReplaySession) GetPendingHideAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.PendingHideAt
}

// ResetScheduler clears the triggered set, the active popup and the pending
// hide deadline. Called by the seek/reset policy on a qualifying backward seek
// (thread-safe). The pinned popup survives, it was a deliberate user action.
func (s *ReplaySession) ResetScheduler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Triggered = make(map[uuid.UUID]bool)
	s.ActivePopupID = nil
	s.PendingHideAt = nil
}

// SetActiveEvent records the resolved active event id (thread-safe)
func (s *ReplaySession) SetActiveEvent(eventID *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ActiveEventID = eventID
}

// GetActiveEvent returns the resolved active event id, or nil (thread-safe)
func (s *ReplaySession) GetActiveEvent() *uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ActiveEventID
}

// SetActiveSegment records the resolved transcript segment (thread-safe)
func (s *ReplaySession) SetActiveSegment(segment *TranscriptSegment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ActiveSegment = segment
}

// GetActiveSegment returns the resolved transcript segment, or nil (thread-safe)
func (s *ReplaySession) GetActiveSegment() *TranscriptSegment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ActiveSegment
}

// UpdateLastAccess updates the last access time to now (thread-safe)
func (s *ReplaySession) UpdateLastAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastAccessTime = time.Now().UTC()
}

// IdleDuration returns the time since last access (thread-safe)
func (s *ReplaySession) IdleDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.LastAccessTime)
}

// ShouldCleanup returns true if the session is paused and has been idle
// longer than the grace period (thread-safe)
func (s *ReplaySession) ShouldCleanup(gracePeriod time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.Playing && time.Since(s.LastAccessTime) > gracePeriod
}

// Close marks the session as torn down (thread-safe)
func (s *ReplaySession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// IsClosed reports whether the session has been torn down (thread-safe)
func (s *ReplaySession) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
