package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stwalsh4118/relisten/internal/db"
	"github.com/stwalsh4118/relisten/internal/logger"
	"github.com/stwalsh4118/relisten/internal/models"
	"github.com/stwalsh4118/relisten/internal/replay"
)

// replayManager defines the interface required by ReplayHandler
type replayManager interface {
	StartReplay(ctx context.Context, recordingID uuid.UUID) (*models.ReplaySession, error)
	Get(sessionID uuid.UUID) (*replay.Driver, bool)
	StopReplay(sessionID uuid.UUID) error
}

// PositionUpdateRequest represents a host playback position notification
type PositionUpdateRequest struct {
	CurrentTime float64 `json:"current_time" binding:"gte=0"`
	Duration    float64 `json:"duration" binding:"gte=0"`
	IsPlaying   bool    `json:"is_playing"`
}

// SeekRequest represents a manual seek command
type SeekRequest struct {
	Time float64 `json:"time" binding:"gte=0"`
}

// ReplayHandler handles replay session API requests
type ReplayHandler struct {
	manager replayManager
}

// NewReplayHandler creates a new replay handler instance
func NewReplayHandler(manager replayManager) *ReplayHandler {
	return &ReplayHandler{manager: manager}
}

// StartReplay handles POST /recordings/:id/replay
func (h *ReplayHandler) StartReplay(c *gin.Context) {
	recordingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	session, err := h.manager.StartReplay(ctx, recordingID)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "recording_not_found",
				Message: "Recording not found",
			})
			return
		}
		if errors.Is(err, replay.ErrManagerStopped) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "service_unavailable",
				Message: "Replay service is shutting down",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Msg("Failed to open replay session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "replay_failed",
			Message: "Failed to open replay session",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id":   session.ID.String(),
		"recording_id": session.RecordingID.String(),
		"duration":     session.GetDuration(),
	})
}

// StopReplay handles DELETE /replay/:session_id
func (h *ReplayHandler) StopReplay(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	if err := h.manager.StopReplay(sessionID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "session_not_found",
			Message: "Replay session not found",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdatePosition handles POST /replay/:session_id/position
func (h *ReplayHandler) UpdatePosition(c *gin.Context) {
	driver, ok := h.driverFor(c)
	if !ok {
		return
	}

	var req PositionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := driver.UpdatePosition(req.CurrentTime, req.Duration, req.IsPlaying); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, driver.Snapshot())
}

// Play handles POST /replay/:session_id/play
func (h *ReplayHandler) Play(c *gin.Context) {
	driver, ok := h.driverFor(c)
	if !ok {
		return
	}

	if err := driver.Play(); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, driver.Snapshot())
}

// Pause handles POST /replay/:session_id/pause
func (h *ReplayHandler) Pause(c *gin.Context) {
	driver, ok := h.driverFor(c)
	if !ok {
		return
	}

	if err := driver.Pause(); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, driver.Snapshot())
}

// Seek handles POST /replay/:session_id/seek
func (h *ReplayHandler) Seek(c *gin.Context) {
	driver, ok := h.driverFor(c)
	if !ok {
		return
	}

	var req SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := driver.SeekTo(req.Time); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, driver.Snapshot())
}

// DismissPopup handles POST /replay/:session_id/popup/dismiss
func (h *ReplayHandler) DismissPopup(c *gin.Context) {
	driver, ok := h.driverFor(c)
	if !ok {
		return
	}

	if err := driver.DismissPopup(); err != nil {
		if errors.Is(err, replay.ErrNoActivePopup) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "no_active_popup",
				Message: "No popup is currently shown",
			})
			return
		}
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, driver.Snapshot())
}

// ExpandPopup handles POST /replay/:session_id/popup/expand
func (h *ReplayHandler) ExpandPopup(c *gin.Context) {
	driver, ok := h.driverFor(c)
	if !ok {
		return
	}

	if err := driver.ExpandPopup(); err != nil {
		if errors.Is(err, replay.ErrNoActivePopup) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "no_active_popup",
				Message: "No popup is currently shown",
			})
			return
		}
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, driver.Snapshot())
}

// GetState handles GET /replay/:session_id/state
func (h *ReplayHandler) GetState(c *gin.Context) {
	driver, ok := h.driverFor(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, driver.Snapshot())
}

// driverFor resolves the replay driver for the session_id path parameter,
// writing an error response when it cannot
func (h *ReplayHandler) driverFor(c *gin.Context) (*replay.Driver, bool) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return nil, false
	}

	driver, found := h.manager.Get(sessionID)
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "session_not_found",
			Message: "Replay session not found",
		})
		return nil, false
	}
	return driver, true
}

// sessionError maps driver errors to HTTP responses
func (h *ReplayHandler) sessionError(c *gin.Context, err error) {
	if errors.Is(err, replay.ErrSessionClosed) {
		c.JSON(http.StatusGone, ErrorResponse{
			Error:   "session_closed",
			Message: "Replay session has been closed",
		})
		return
	}
	logger.Log.Error().Err(err).Msg("Replay command failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "replay_failed",
		Message: "Replay command failed",
	})
}

// SetupReplayRoutes registers replay session routes
func SetupReplayRoutes(apiGroup *gin.RouterGroup, manager *replay.Manager) {
	handler := NewReplayHandler(manager)

	apiGroup.POST("/recordings/:id/replay", handler.StartReplay)

	sessions := apiGroup.Group("/replay")
	{
		sessions.DELETE("/:session_id", handler.StopReplay)
		sessions.POST("/:session_id/position", handler.UpdatePosition)
		sessions.POST("/:session_id/play", handler.Play)
		sessions.POST("/:session_id/pause", handler.Pause)
		sessions.POST("/:session_id/seek", handler.Seek)
		sessions.POST("/:session_id/popup/dismiss", handler.DismissPopup)
		sessions.POST("/:session_id/popup/expand", handler.ExpandPopup)
		sessions.GET("/:session_id/state", handler.GetState)
	}
}
