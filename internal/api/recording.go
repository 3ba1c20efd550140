package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stwalsh4118/relisten/internal/db"
	"github.com/stwalsh4118/relisten/internal/logger"
	"github.com/stwalsh4118/relisten/internal/models"
)

const requestTimeout = 10 * time.Second

// ErrorResponse represents an error response body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Request/Response DTOs

// CreateRecordingRequest represents a request to create a new recording
type CreateRecordingRequest struct {
	Title           string  `json:"title" binding:"required"`
	DurationSeconds float64 `json:"duration_seconds" binding:"gte=0"`
}

// AddEventRequest represents a request to attach a photo event to a recording
type AddEventRequest struct {
	OffsetSeconds float64 `json:"offset_seconds" binding:"gte=0"`
	AssetURL      string  `json:"asset_url" binding:"required"`
	Caption       *string `json:"caption,omitempty"`
}

// AddSegmentsRequest represents a request to bulk-add transcript segments
type AddSegmentsRequest struct {
	Segments []SegmentInput `json:"segments" binding:"required,min=1"`
}

// SegmentInput describes one transcript segment in a bulk-add request
type SegmentInput struct {
	StartSeconds float64 `json:"start_seconds" binding:"gte=0"`
	EndSeconds   float64 `json:"end_seconds" binding:"gtefield=StartSeconds"`
	Text         string  `json:"text" binding:"required"`
}

// TimelineResponse represents a recording's full timeline: events sorted by
// offset plus transcript segments
type TimelineResponse struct {
	RecordingID string                      `json:"recording_id"`
	Events      []*models.TimelineEvent     `json:"events"`
	Segments    []*models.TranscriptSegment `json:"segments"`
}

// RecordingListResponse represents a list of recordings
type RecordingListResponse struct {
	Recordings []*models.Recording `json:"recordings"`
}

// RecordingHandler handles recording-related API requests
type RecordingHandler struct {
	repos *db.Repositories
}

// NewRecordingHandler creates a new recording handler instance
func NewRecordingHandler(repos *db.Repositories) *RecordingHandler {
	return &RecordingHandler{repos: repos}
}

// CreateRecording handles POST /recordings
func (h *RecordingHandler) CreateRecording(c *gin.Context) {
	var req CreateRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	recording := models.NewRecording(req.Title, req.DurationSeconds)
	if err := h.repos.Recordings.Create(ctx, recording); err != nil {
		logger.Log.Error().
			Err(err).
			Str("title", req.Title).
			Msg("Failed to create recording")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create recording",
		})
		return
	}

	c.JSON(http.StatusCreated, recording)
}

// ListRecordings handles GET /recordings
func (h *RecordingHandler) ListRecordings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	recordings, err := h.repos.Recordings.List(ctx, 0, 0)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list recordings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list recordings",
		})
		return
	}

	c.JSON(http.StatusOK, RecordingListResponse{Recordings: recordings})
}

// GetRecording handles GET /recordings/:id
func (h *RecordingHandler) GetRecording(c *gin.Context) {
	recordingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	recording, err := h.repos.Recordings.GetByID(ctx, recordingID)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "recording_not_found",
				Message: "Recording not found",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Msg("Failed to get recording")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get recording",
		})
		return
	}

	c.JSON(http.StatusOK, recording)
}

// DeleteRecording handles DELETE /recordings/:id
func (h *RecordingHandler) DeleteRecording(c *gin.Context) {
	recordingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.repos.Recordings.Delete(ctx, recordingID); err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "recording_not_found",
				Message: "Recording not found",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Msg("Failed to delete recording")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete recording",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// AddEvent handles POST /recordings/:id/events
func (h *RecordingHandler) AddEvent(c *gin.Context) {
	recordingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if _, err := h.repos.Recordings.GetByID(ctx, recordingID); err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "recording_not_found",
				Message: "Recording not found",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Msg("Failed to get recording for event")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get recording",
		})
		return
	}

	event := models.NewTimelineEvent(recordingID, req.OffsetSeconds, req.AssetURL)
	event.Caption = req.Caption

	if err := h.repos.TimelineEvents.Create(ctx, event); err != nil {
		if db.IsDuplicate(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "duplicate_offset",
				Message: "An event already exists at this offset",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Float64("offset_seconds", req.OffsetSeconds).
			Msg("Failed to create timeline event")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create timeline event",
		})
		return
	}

	c.JSON(http.StatusCreated, event)
}

// AddSegments handles POST /recordings/:id/segments
func (h *RecordingHandler) AddSegments(c *gin.Context) {
	recordingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddSegmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if _, err := h.repos.Recordings.GetByID(ctx, recordingID); err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "recording_not_found",
				Message: "Recording not found",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Msg("Failed to get recording for segments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get recording",
		})
		return
	}

	segments := make([]*models.TranscriptSegment, 0, len(req.Segments))
	for _, in := range req.Segments {
		segments = append(segments, models.NewTranscriptSegment(recordingID, in.StartSeconds, in.EndSeconds, in.Text))
	}

	if err := h.repos.TranscriptSegments.CreateBatch(ctx, segments); err != nil {
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Int("segments", len(segments)).
			Msg("Failed to create transcript segments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create transcript segments",
		})
		return
	}

	c.JSON(http.StatusCreated, segments)
}

// GetTimeline handles GET /recordings/:id/timeline
func (h *RecordingHandler) GetTimeline(c *gin.Context) {
	recordingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if _, err := h.repos.Recordings.GetByID(ctx, recordingID); err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "recording_not_found",
				Message: "Recording not found",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Msg("Failed to get recording for timeline")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get recording",
		})
		return
	}

	events, err := h.repos.TimelineEvents.ListByRecording(ctx, recordingID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Msg("Failed to list timeline events")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list timeline events",
		})
		return
	}

	segments, err := h.repos.TranscriptSegments.ListByRecording(ctx, recordingID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("recording_id", recordingID.String()).
			Msg("Failed to list transcript segments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list transcript segments",
		})
		return
	}

	c.JSON(http.StatusOK, TimelineResponse{
		RecordingID: recordingID.String(),
		Events:      events,
		Segments:    segments,
	})
}

// parseIDParam parses a UUID path parameter, writing a 400 response on failure
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// SetupRecordingRoutes registers recording routes
func SetupRecordingRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories) {
	handler := NewRecordingHandler(repos)

	recordings := apiGroup.Group("/recordings")
	{
		recordings.POST("", handler.CreateRecording)
		recordings.GET("", handler.ListRecordings)
		recordings.GET("/:id", handler.GetRecording)
		recordings.DELETE("/:id", handler.DeleteRecording)
		recordings.POST("/:id/events", handler.AddEvent)
		recordings.POST("/:id/segments", handler.AddSegments)
		recordings.GET("/:id/timeline", handler.GetTimeline)
	}
}
