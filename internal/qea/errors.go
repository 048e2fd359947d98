package qea

import "fmt"

// InfeasibleRegionError is returned when constrained sampling cannot collect
// a full feasible batch within the configured retry budget. It usually means
// the feasible region has near-zero probability mass under the current
// mean/sigma. Use errors.Is(err, &InfeasibleRegionError{}) to check for it.
type InfeasibleRegionError struct {
	Wanted  int
	Held    int
	Retries int
}

func (e *InfeasibleRegionError) Error() string {
	return fmt.Sprintf("constrained sampling stalled: %d of %d feasible points after %d retries", e.Held, e.Wanted, e.Retries)
}

func (e *InfeasibleRegionError) Is(target error) bool {
	_, ok := target.(*InfeasibleRegionError)
	return ok
}

// ConfigError reports an unrecoverable training configuration violation,
// detected before any iteration runs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + e.Field + " " + e.Reason
}

func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok
}
