// Package problem loads optimization run descriptions from YAML files: which
// benchmark to run, over what bounds, with which constraints and training
// parameters.
package problem

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/qevo/internal/bench"
	"github.com/cwbudde/qevo/internal/qea"
)

// Spec is the YAML schema for a run description.
type Spec struct {
	Name      string `yaml:"name"`
	Benchmark string `yaml:"benchmark"`
	Dims      int    `yaml:"dims"`

	// Lower/Upper override the benchmark's conventional bounds. Either
	// per-dimension vectors or single scalars applied to every dimension.
	Lower []float64 `yaml:"lower,omitempty"`
	Upper []float64 `yaml:"upper,omitempty"`

	// Integral lists the indices of integer-valued dimensions.
	Integral []int `yaml:"integral,omitempty"`

	// Constraints are linear feasibility predicates coeffs·x + offset >= 0.
	Constraints []LinearSpec `yaml:"constraints,omitempty"`

	Training TrainingSpec `yaml:"training"`
}

// LinearSpec is the YAML form of a linear constraint.
type LinearSpec struct {
	Coeffs []float64 `yaml:"coeffs"`
	Offset float64   `yaml:"offset"`
}

// TrainingSpec carries the trainer parameters. Zero values fall through to
// the trainer defaults.
type TrainingSpec struct {
	Iterations     int     `yaml:"iterations"`
	Samples        int     `yaml:"samples"`
	Elite          int     `yaml:"elite"`
	SigmaScaler    float64 `yaml:"sigmaScaler"`
	MuScaler       float64 `yaml:"muScaler"`
	SavingInterval int     `yaml:"savingInterval"`
	Seed           uint64  `yaml:"seed"`
	Stagnation     bool    `yaml:"stagnation"`
	MaxRetries     int     `yaml:"maxRetries"`
}

// Run is a fully resolved problem ready to hand to the trainer.
type Run struct {
	Name        string
	Cost        qea.CostFunc
	Domain      *qea.Domain
	Constraints qea.ConstraintSet
	Config      qea.Config
}

// Load reads and resolves a problem file.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse problem file: %w", err)
	}
	return Resolve(&spec)
}

// Resolve validates a spec and builds the runnable problem.
func Resolve(spec *Spec) (*Run, error) {
	if spec.Benchmark == "" {
		return nil, fmt.Errorf("problem %q: benchmark is required", spec.Name)
	}
	if spec.Dims <= 0 {
		return nil, fmt.Errorf("problem %q: dims must be positive, got %d", spec.Name, spec.Dims)
	}

	base, err := bench.Lookup(spec.Benchmark, spec.Dims)
	if err != nil {
		return nil, fmt.Errorf("problem %q: %w", spec.Name, err)
	}

	lower, err := expandBounds(spec.Lower, spec.Dims, base.Domain.Lower)
	if err != nil {
		return nil, fmt.Errorf("problem %q: lower: %w", spec.Name, err)
	}
	upper, err := expandBounds(spec.Upper, spec.Dims, base.Domain.Upper)
	if err != nil {
		return nil, fmt.Errorf("problem %q: upper: %w", spec.Name, err)
	}

	integral := make([]bool, spec.Dims)
	for _, idx := range spec.Integral {
		if idx < 0 || idx >= spec.Dims {
			return nil, fmt.Errorf("problem %q: integral index %d out of range [0,%d)", spec.Name, idx, spec.Dims)
		}
		integral[idx] = true
	}

	domain, err := qea.NewDomain(lower, upper, integral)
	if err != nil {
		return nil, fmt.Errorf("problem %q: %w", spec.Name, err)
	}

	var constraints qea.ConstraintSet
	for i, c := range spec.Constraints {
		if len(c.Coeffs) != spec.Dims {
			return nil, fmt.Errorf("problem %q: constraint %d has %d coefficients, expected %d", spec.Name, i, len(c.Coeffs), spec.Dims)
		}
		constraints = append(constraints, qea.LinearConstraint{Coeffs: c.Coeffs, Offset: c.Offset})
	}

	return &Run{
		Name:        spec.Name,
		Cost:        base.Cost,
		Domain:      domain,
		Constraints: constraints,
		Config: qea.Config{
			Iterations:       spec.Training.Iterations,
			SampleSize:       spec.Training.Samples,
			EliteLevel:       spec.Training.Elite,
			SigmaScaler:      spec.Training.SigmaScaler,
			MuScaler:         spec.Training.MuScaler,
			SavingInterval:   spec.Training.SavingInterval,
			Seed:             spec.Training.Seed,
			Stagnation:       spec.Training.Stagnation,
			MaxSampleRetries: spec.Training.MaxRetries,
		},
	}, nil
}

// expandBounds resolves a YAML bound entry: absent (use defaults from the
// benchmark), a single scalar applied to all dimensions, or a full vector.
func expandBounds(values []float64, dims int, fallback func(int) float64) ([]float64, error) {
	out := make([]float64, dims)
	switch len(values) {
	case 0:
		for i := range out {
			out[i] = fallback(i)
		}
	case 1:
		for i := range out {
			out[i] = values[0]
		}
	case dims:
		copy(out, values)
	default:
		return nil, fmt.Errorf("got %d values, expected 1 or %d", len(values), dims)
	}
	return out, nil
}
