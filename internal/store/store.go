package store

// Store defines the interface for run-record persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if the run doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun atomically saves a run record. An existing record for the same
	// runID is overwritten. Implementations should use atomic write
	// strategies (temp file + rename) to prevent corruption.
	SaveRun(runID string, record *RunRecord) error

	// LoadRun retrieves the record for the given run.
	// Returns ErrNotFound if no record exists.
	LoadRun(runID string) (*RunRecord, error)

	// ListRuns returns metadata for all persisted runs. The slice may be
	// empty if no runs exist.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run record and all associated artifacts
	// (run.json, archive.json, history.jsonl).
	// Returns ErrNotFound if no record exists.
	DeleteRun(runID string) error

	// SaveArchive atomically saves the result archive (cost history,
	// mean/sigma history, evaluation counts) for the given run.
	SaveArchive(runID string, archive *Archive) error

	// LoadArchive retrieves the result archive for the given run.
	// Returns ErrNotFound if no archive exists.
	LoadArchive(runID string) (*Archive, error)
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run error.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
