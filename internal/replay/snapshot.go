package replay

import (
	"github.com/google/uuid"
	"github.com/stwalsh4118/relisten/internal/models"
	"github.com/stwalsh4118/relisten/internal/timeline"
)

// PopupView is the renderable description of a surfaced popup
type PopupView struct {
	EventID       uuid.UUID `json:"event_id"`
	OffsetSeconds float64   `json:"offset_seconds"`
	AssetURL      string    `json:"asset_url"`
	Caption       *string   `json:"caption,omitempty"`
}

// StateSnapshot is the engine's externally observable state at a moment:
// which event is active, which popup (if any) is shown or pinned, and which
// transcript segment covers the current position.
type StateSnapshot struct {
	SessionID     uuid.UUID                 `json:"session_id"`
	RecordingID   uuid.UUID                 `json:"recording_id"`
	CurrentTime   float64                   `json:"current_time"`
	Clock         string                    `json:"clock"`
	Duration      float64                   `json:"duration"`
	Playing       bool                      `json:"playing"`
	DriverState   string                    `json:"driver_state"`
	ActiveEventID *uuid.UUID                `json:"active_event_id,omitempty"`
	ActivePopup   *PopupView                `json:"active_popup,omitempty"`
	PinnedPopup   *PopupView                `json:"pinned_popup,omitempty"`
	ActiveSegment *models.TranscriptSegment `json:"active_segment,omitempty"`
}

// Snapshot captures the engine's current observable state
func (d *Driver) Snapshot() StateSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	currentTime := d.session.GetCurrentTime()

	return StateSnapshot{
		SessionID:     d.session.ID,
		RecordingID:   d.session.RecordingID,
		CurrentTime:   currentTime,
		Clock:         timeline.FormatClock(currentTime),
		Duration:      d.session.GetDuration(),
		Playing:       d.session.IsPlaying(),
		DriverState:   d.state.String(),
		ActiveEventID: d.session.GetActiveEvent(),
		ActivePopup:   d.popupView(d.session.GetActivePopup()),
		PinnedPopup:   d.popupView(d.session.GetPinnedPopup()),
		ActiveSegment: d.session.GetActiveSegment(),
	}
}

// popupView resolves a popup event id to its renderable view, or nil
func (d *Driver) popupView(id *uuid.UUID) *PopupView {
	e := d.lookupEvent(id)
	if e == nil {
		return nil
	}
	return &PopupView{
		EventID:       e.ID,
		OffsetSeconds: e.OffsetSeconds,
		AssetURL:      e.AssetURL,
		Caption:       e.Caption,
	}
}
