package opt

import (
	"context"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/qevo/internal/qea"
)

// QEAAdapter runs the quantum-inspired evolutionary optimizer behind the
// Optimizer interface, batch-ifying a scalar objective.
type QEAAdapter struct {
	config qea.Config
}

// NewQEA creates a QEA optimizer adapter. maxIters and sampleSize map onto
// the trainer's iteration budget and per-iteration batch size.
func NewQEA(maxIters, sampleSize int, seed int64) Optimizer {
	return &QEAAdapter{
		config: qea.Config{
			Iterations: maxIters,
			SampleSize: sampleSize,
			Seed:       uint64(seed),
		},
	}
}

// NewQEAWithConfig creates an adapter with full control over the trainer
// configuration.
func NewQEAWithConfig(config qea.Config) Optimizer {
	return &QEAAdapter{config: config}
}

// Run executes the QEA training loop over the given box.
func (q *QEAAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	domain, err := qea.NewDomain(lower[:dim], upper[:dim], nil)
	if err != nil {
		slog.Error("Invalid domain, falling back to zero vector", "error", err)
		return make([]float64, dim), eval(make([]float64, dim))
	}

	cost := func(batch *mat.Dense) []float64 {
		n, _ := batch.Dims()
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = eval(batch.RawRowView(i))
		}
		return out
	}

	trainer := qea.NewTrainer(cost, domain, nil, q.config)
	result, err := trainer.Run(context.Background())
	if err != nil {
		slog.Error("Training failed, falling back to zero vector", "error", err)
		return make([]float64, dim), eval(make([]float64, dim))
	}
	return result.BestPosition, result.BestCost
}
