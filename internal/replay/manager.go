package replay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/relisten/internal/config"
	"github.com/stwalsh4118/relisten/internal/db"
	"github.com/stwalsh4118/relisten/internal/logger"
	"github.com/stwalsh4118/relisten/internal/models"
	"github.com/stwalsh4118/relisten/internal/timeline"
)

// Manager owns every live replay session and its driver. It loads a
// recording's timeline from the database when a session opens, reaps sessions
// that have sat paused past the grace period, and tears everything down on
// shutdown.
type Manager struct {
	repos         *db.Repositories
	cfg           *config.ReplayConfig
	clock         Clock
	drivers       map[uuid.UUID]*Driver
	cleanupTicker *time.Ticker
	stopChan      chan struct{}
	cleanupDone   chan struct{}
	mu            sync.RWMutex
	stopped       bool
}

// NewManager creates a replay manager
func NewManager(repos *db.Repositories, cfg *config.ReplayConfig) *Manager {
	return &Manager{
		repos:       repos,
		cfg:         cfg,
		clock:       SystemClock,
		drivers:     make(map[uuid.UUID]*Driver),
		stopChan:    make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Start launches the background idle-session cleanup
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrManagerStopped
	}

	cleanupInterval := time.Duration(m.cfg.CleanupInterval) * time.Second
	m.cleanupTicker = time.NewTicker(cleanupInterval)
	go m.runCleanupLoop()

	logger.Log.Info().
		Int("cleanup_interval_seconds", m.cfg.CleanupInterval).
		Int("grace_period_seconds", m.cfg.GracePeriodSeconds).
		Dur("sample_interval", m.cfg.SampleInterval).
		Msg("Replay manager started")

	return nil
}

// Stop shuts the manager down and tears down every live session
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	close(m.stopChan)
	if m.cleanupTicker != nil {
		<-m.cleanupDone
		m.cleanupTicker.Stop()
	}

	m.mu.Lock()
	drivers := make([]*Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		drivers = append(drivers, d)
	}
	m.drivers = make(map[uuid.UUID]*Driver)
	m.mu.Unlock()

	for _, d := range drivers {
		d.Close()
	}

	logger.Log.Info().
		Int("closed_sessions", len(drivers)).
		Msg("Replay manager stopped")
}

// StartReplay opens a replay session for a recording: its timeline events are
// loaded, sanitized and sorted once, transcript segments are loaded as-is, and
// a fresh driver is armed in the Idle state.
func (m *Manager) StartReplay(ctx context.Context, recordingID uuid.UUID) (*models.ReplaySession, error) {
	m.mu.RLock()
	if m.stopped {
		m.mu.RUnlock()
		return nil, ErrManagerStopped
	}
	m.mu.RUnlock()

	recording, err := m.repos.Recordings.GetByID(ctx, recordingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}

	rawEvents, err := m.repos.TimelineEvents.ListByRecording(ctx, recordingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline events: %w", err)
	}

	segments, err := m.repos.TranscriptSegments.ListByRecording(ctx, recordingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript segments: %w", err)
	}

	events := timeline.SanitizeEvents(rawEvents)

	session := models.NewReplaySession(recordingID, recording.DurationSeconds)
	driver := NewDriver(session, events, segments, m.clock, m.cfg.SampleInterval, m.cfg.RefreshInterval)

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		driver.Close()
		return nil, ErrManagerStopped
	}
	m.drivers[session.ID] = driver
	m.mu.Unlock()

	logger.Log.Info().
		Str("session_id", session.ID.String()).
		Str("recording_id", recordingID.String()).
		Int("events", len(events)).
		Int("dropped_events", len(rawEvents)-len(events)).
		Int("segments", len(segments)).
		Msg("Replay session opened")

	return session, nil
}

// Get returns the driver for a session id
func (m *Manager) Get(sessionID uuid.UUID) (*Driver, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[sessionID]
	return d, ok
}

// StopReplay tears down a replay session
func (m *Manager) StopReplay(sessionID uuid.UUID) error {
	m.mu.Lock()
	driver, ok := m.drivers[sessionID]
	if ok {
		delete(m.drivers, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	driver.Close()

	logger.Log.Info().
		Str("session_id", sessionID.String()).
		Msg("Replay session closed")

	return nil
}

// SessionCount returns the number of live replay sessions
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.drivers)
}

// runCleanupLoop reaps idle sessions on a fixed cadence
func (m *Manager) runCleanupLoop() {
	defer close(m.cleanupDone)

	for {
		select {
		case <-m.stopChan:
			return
		case <-m.cleanupTicker.C:
			m.performCleanup()
		}
	}
}

// performCleanup tears down sessions that have sat paused past the grace period
func (m *Manager) performCleanup() {
	gracePeriod := time.Duration(m.cfg.GracePeriodSeconds) * time.Second

	m.mu.RLock()
	candidates := make([]uuid.UUID, 0)
	for id, d := range m.drivers {
		if d.Session().ShouldCleanup(gracePeriod) {
			candidates = append(candidates, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range candidates {
		logger.Log.Info().
			Str("session_id", id.String()).
			Msg("Cleaning up idle replay session")
		if err := m.StopReplay(id); err != nil {
			logger.Log.Warn().
				Err(err).
				Str("session_id", id.String()).
				Msg("Failed to clean up idle replay session")
		}
	}
}
