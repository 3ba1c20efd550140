package db

// Repositories provides access to all database repositories
type Repositories struct {
	Recordings         *RecordingRepository
	TimelineEvents     *TimelineEventRepository
	TranscriptSegments *TranscriptSegmentRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Recordings:         NewRecordingRepository(db),
		TimelineEvents:     NewTimelineEventRepository(db),
		TranscriptSegments: NewTranscriptSegmentRepository(db),
	}
}
