package store

import (
	"time"

	"github.com/cwbudde/qevo/internal/qea"
)

// RunConfig holds the configuration an optimization run was started with
// (record copy). This avoids import cycles with the server package.
type RunConfig struct {
	Problem        string  `json:"problem"`
	Dims           int     `json:"dims"`
	Iterations     int     `json:"iterations"`
	SampleSize     int     `json:"sampleSize"`
	EliteLevel     int     `json:"eliteLevel"`
	SigmaScaler    float64 `json:"sigmaScaler"`
	MuScaler       float64 `json:"muScaler"`
	SavingInterval int     `json:"savingInterval"`
	Seed           uint64  `json:"seed"`
	Stagnation     bool    `json:"stagnation,omitempty"`
	Constraints    int     `json:"constraints,omitempty"`
}

// RunRecord is the persisted outcome of a completed optimization run: the
// final elite target with its cost, plus enough metadata to reproduce the
// run. The full snapshot history lives in the run's Archive, not here.
type RunRecord struct {
	// RunID is the unique identifier for this run
	RunID string `json:"runId"`

	// BestPosition is the final elite target position
	BestPosition []float64 `json:"bestPosition"`

	// BestCost is the cost of BestPosition
	BestCost float64 `json:"bestCost"`

	// ElapsedSeconds is the wall-clock duration of the run
	ElapsedSeconds float64 `json:"elapsedSeconds"`

	// Evaluations is the total number of cost-function evaluations counted
	// toward the iteration batches
	Evaluations int `json:"evaluations"`

	// Snapshots is the number of history entries in the archive
	Snapshots int `json:"snapshots"`

	// Timestamp records when the run completed
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run configuration for listing and reproduction
	Config RunConfig `json:"config"`
}

// RunInfo contains metadata about a run without the position vector.
// Used for listings.
type RunInfo struct {
	RunID       string    `json:"runId"`
	BestCost    float64   `json:"bestCost"`
	Evaluations int       `json:"evaluations"`
	Timestamp   time.Time `json:"timestamp"`
	Problem     string    `json:"problem"`
	Dims        int       `json:"dims"`
}

// Archive is the persisted history of a run: the three logical arrays under
// their semantic names. CostH is the elite cost at each snapshot, PosHistory
// the mean/sigma pair (snapshots × 2 × dims) and Time the cumulative
// evaluation count per snapshot.
type Archive struct {
	CostH      []float64      `json:"cost_h"`
	PosHistory [][2][]float64 `json:"pos_history"`
	Time       []float64      `json:"time"`
}

// NewRunRecord builds a record from a trainer result.
func NewRunRecord(runID string, result *qea.Result, config RunConfig) *RunRecord {
	return &RunRecord{
		RunID:          runID,
		BestPosition:   result.BestPosition,
		BestCost:       result.BestCost,
		ElapsedSeconds: result.Elapsed.Seconds(),
		Evaluations:    result.Evaluations,
		Snapshots:      len(result.History),
		Timestamp:      time.Now(),
		Config:         config,
	}
}

// NewArchive builds the result archive from a trainer's snapshot history.
func NewArchive(history []qea.Snapshot) *Archive {
	a := &Archive{
		CostH:      make([]float64, len(history)),
		PosHistory: make([][2][]float64, len(history)),
		Time:       make([]float64, len(history)),
	}
	for i, snap := range history {
		a.CostH[i] = snap.EliteCost
		a.PosHistory[i] = [2][]float64{snap.Mean, snap.Sigma}
		a.Time[i] = float64(snap.Evaluations)
	}
	return a
}

// ToInfo converts a full RunRecord to RunInfo (metadata only).
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:       r.RunID,
		BestCost:    r.BestCost,
		Evaluations: r.Evaluations,
		Timestamp:   r.Timestamp,
		Problem:     r.Config.Problem,
		Dims:        r.Config.Dims,
	}
}

// Validate checks if the record has valid data.
// Returns an error if any required field is missing or invalid.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(r.BestPosition) == 0 {
		return &ValidationError{Field: "BestPosition", Reason: "cannot be empty"}
	}
	if r.ElapsedSeconds < 0 {
		return &ValidationError{Field: "ElapsedSeconds", Reason: "cannot be negative"}
	}
	if r.Evaluations < 0 {
		return &ValidationError{Field: "Evaluations", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Dims <= 0 {
		return &ValidationError{Field: "Config.Dims", Reason: "must be positive"}
	}
	if len(r.BestPosition) != r.Config.Dims {
		return &ValidationError{Field: "BestPosition", Reason: "length must match Config.Dims"}
	}
	if r.Config.Iterations <= 0 {
		return &ValidationError{Field: "Config.Iterations", Reason: "must be positive"}
	}
	if r.Config.SampleSize <= r.Config.EliteLevel {
		return &ValidationError{Field: "Config.SampleSize", Reason: "must exceed Config.EliteLevel"}
	}
	return nil
}

// ValidationError represents a run-record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
