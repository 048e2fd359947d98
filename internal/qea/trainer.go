package qea

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"
)

// Default training parameters, matching the reference algorithm.
const (
	DefaultIterations     = 100000
	DefaultSampleSize     = 5
	DefaultEliteLevel     = 4
	DefaultSavingInterval = 1

	progressEvery = 50
)

// Config holds the parameters of a training run. Zero values select the
// defaults above.
type Config struct {
	Iterations     int
	SampleSize     int
	EliteLevel     int
	SigmaScaler    float64
	MuScaler       float64
	SavingInterval int
	Seed           uint64

	// Stagnation enables the anti-stagnation sigma correction.
	Stagnation bool

	// MaxSampleRetries bounds constrained rejection sampling.
	MaxSampleRetries int

	// Progress, when set, is invoked every 50 iterations with the current
	// iteration index, the total iteration count and the current elite cost.
	// It is purely observational.
	Progress ProgressFunc
}

// ProgressFunc receives periodic progress notifications during a run.
type ProgressFunc func(iteration, total int, eliteCost float64)

func (c Config) withDefaults() Config {
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.SampleSize == 0 {
		c.SampleSize = DefaultSampleSize
	}
	if c.EliteLevel == 0 {
		c.EliteLevel = DefaultEliteLevel
	}
	if c.SigmaScaler == 0 {
		c.SigmaScaler = DefaultSigmaScaler
	}
	if c.MuScaler == 0 {
		c.MuScaler = DefaultMuScaler
	}
	if c.SavingInterval == 0 {
		c.SavingInterval = DefaultSavingInterval
	}
	return c
}

// Snapshot is one history entry, taken every SavingInterval iterations.
type Snapshot struct {
	Iteration   int       `json:"iteration"`
	Mean        []float64 `json:"mean"`
	Sigma       []float64 `json:"sigma"`
	EliteCost   float64   `json:"eliteCost"`
	Evaluations int       `json:"evaluations"`
}

// Result is the immutable outcome of a completed run.
//
// BestCost and BestPosition report the last iteration's elite target, not the
// tracked best-of-best; the two can differ, and the reference algorithm
// deliberately reports the former (the final iteration sharpens the estimate
// by forcing the elite level to 1).
type Result struct {
	BestCost     float64
	BestPosition []float64
	Elapsed      time.Duration
	Evaluations  int
	History      []Snapshot
}

// Trainer owns one Individual for the lifetime of a run and drives the
// sample → evaluate → update cycle for a fixed iteration budget.
type Trainer struct {
	cost        CostFunc
	domain      *Domain
	constraints ConstraintSet
	config      Config
}

// NewTrainer creates a trainer for the given cost function and domain.
// constraints may be nil.
func NewTrainer(cost CostFunc, domain *Domain, constraints ConstraintSet, config Config) *Trainer {
	return &Trainer{
		cost:        cost,
		domain:      domain,
		constraints: constraints,
		config:      config.withDefaults(),
	}
}

// Config returns the effective configuration after defaulting.
func (t *Trainer) Config() Config { return t.config }

// Run executes the full training loop: Iterations+1 passes (indices 0 through
// Iterations inclusive), each drawing a batch, selecting the elite target,
// refreshing best-of-best and applying the update rule. History snapshots are
// taken every SavingInterval iterations, including iteration 0.
//
// Run fails upfront with ConfigError if SampleSize does not exceed
// EliteLevel, and mid-run with InfeasibleRegionError if constrained sampling
// stalls. Cancelling the context stops the run early with ctx.Err(); the
// reference algorithm had no way to interrupt a run, so this is a deliberate
// hardening.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	cfg := t.config
	if cfg.SampleSize <= cfg.EliteLevel {
		return nil, &ConfigError{Field: "SampleSize", Reason: "must exceed EliteLevel"}
	}

	src := rand.NewSource(cfg.Seed)
	rng := rand.New(src)
	sampler := NewSampler(t.domain, t.constraints, src, cfg.MaxSampleRetries)
	updater := NewUpdater(cfg.MuScaler, cfg.SigmaScaler, t.cost)
	updater.Stagnation = cfg.Stagnation

	ind := NewIndividual(t.domain, rng)
	bobCost := costAt(t.cost, ind.BestOfBest)

	history := make([]Snapshot, 0, 1+cfg.Iterations/cfg.SavingInterval)

	slog.Info("Starting training",
		"dims", t.domain.Dims(),
		"iterations", cfg.Iterations,
		"sample_size", cfg.SampleSize,
		"elite_level", cfg.EliteLevel,
		"constraints", len(t.constraints),
	)

	start := time.Now()
	var eliteTarget []float64
	var eliteCost float64

	for i := 0; i <= cfg.Iterations; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		batch, err := sampler.SampleFeasible(ind, cfg.SampleSize)
		if err != nil {
			return nil, err
		}

		// The last round narrows the target to the single best point,
		// sharpening the final estimate.
		eliteLevel := cfg.EliteLevel
		if i == cfg.Iterations {
			eliteLevel = 1
		}

		eliteTarget = SelectElite(batch, t.cost, eliteLevel)
		eliteCost = costAt(t.cost, eliteTarget)

		if eliteCost < bobCost {
			copy(ind.BestOfBest, eliteTarget)
			bobCost = eliteCost
		}

		updater.Update(ind, eliteTarget)

		if i%cfg.SavingInterval == 0 {
			history = append(history, Snapshot{
				Iteration:   i,
				Mean:        append([]float64{}, ind.Mean...),
				Sigma:       append([]float64{}, ind.Sigma...),
				EliteCost:   eliteCost,
				Evaluations: i * cfg.SampleSize,
			})
		}

		if i%progressEvery == 0 && cfg.Progress != nil {
			cfg.Progress(i, cfg.Iterations, eliteCost)
		}
	}

	elapsed := time.Since(start)
	slog.Info("Training complete", "elapsed", elapsed, "best_cost", eliteCost)

	return &Result{
		BestCost:     eliteCost,
		BestPosition: append([]float64{}, eliteTarget...),
		Elapsed:      elapsed,
		Evaluations:  cfg.Iterations * cfg.SampleSize,
		History:      history,
	}, nil
}
