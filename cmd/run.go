package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/qevo/internal/bench"
	"github.com/cwbudde/qevo/internal/opt"
	"github.com/cwbudde/qevo/internal/problem"
	"github.com/cwbudde/qevo/internal/qea"
	"github.com/cwbudde/qevo/internal/store"
)

var (
	problemName string
	problemFile string
	dims        int
	algo        string
	iters       int
	samples     int
	elite       int
	sigmaScaler float64
	muScaler    float64
	interval    int
	seed        uint64
	stagnation  bool
	saveRun     bool
	dataDir     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single optimization",
	Long: `Runs one optimization over a named benchmark or a YAML problem file
and prints the final cost and position. With --save the run record and the
full cost/position history are persisted under the data directory.`,
	RunE: runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&problemName, "problem", "sphere", "Benchmark problem name")
	runCmd.Flags().StringVar(&problemFile, "config", "", "YAML problem file (overrides --problem flags)")
	runCmd.Flags().IntVar(&dims, "dims", 2, "Problem dimensionality")
	runCmd.Flags().StringVar(&algo, "algo", "qea", "Algorithm: qea, mayfly")
	runCmd.Flags().IntVar(&iters, "iters", 2000, "Iteration budget")
	runCmd.Flags().IntVar(&samples, "samples", 10, "Points sampled per iteration")
	runCmd.Flags().IntVar(&elite, "elite", 4, "Elitist level (best rows averaged into the target)")
	runCmd.Flags().Float64Var(&sigmaScaler, "sigma-scaler", qea.DefaultSigmaScaler, "Sigma shrink/grow factor (> 1)")
	runCmd.Flags().Float64Var(&muScaler, "mu-scaler", qea.DefaultMuScaler, "Mean step divisor")
	runCmd.Flags().IntVar(&interval, "interval", 10, "History snapshot interval")
	runCmd.Flags().Uint64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().BoolVar(&stagnation, "stagnation", false, "Enable anti-stagnation sigma correction")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "Persist run record and history")
	runCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for persisted runs")

	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	run, err := resolveRun()
	if err != nil {
		return err
	}

	slog.Info("Starting optimization",
		"problem", run.Name,
		"dims", run.Domain.Dims(),
		"algo", algo,
		"iters", run.Config.Iterations,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch algo {
	case "qea":
		return runQEA(ctx, run)
	case "mayfly":
		return runMayflyBaseline(run)
	default:
		return fmt.Errorf("unknown algorithm: %s", algo)
	}
}

// resolveRun builds the problem either from a YAML file or from flags.
func resolveRun() (*problem.Run, error) {
	if problemFile != "" {
		run, err := problem.Load(problemFile)
		if err != nil {
			return nil, err
		}
		return run, nil
	}

	p, err := bench.Lookup(problemName, dims)
	if err != nil {
		return nil, err
	}
	return &problem.Run{
		Name:   p.Name,
		Cost:   p.Cost,
		Domain: p.Domain,
		Config: qea.Config{
			Iterations:     iters,
			SampleSize:     samples,
			EliteLevel:     elite,
			SigmaScaler:    sigmaScaler,
			MuScaler:       muScaler,
			SavingInterval: interval,
			Seed:           seed,
			Stagnation:     stagnation,
		},
	}, nil
}

func runQEA(ctx context.Context, run *problem.Run) error {
	cfg := run.Config
	cfg.Progress = func(iteration, total int, eliteCost float64) {
		fmt.Printf("\r[%d/%d] %5.1f%%  best cost = %g        ", iteration, total, 100*float64(iteration)/float64(total), eliteCost)
	}

	trainer := qea.NewTrainer(run.Cost, run.Domain, run.Constraints, cfg)
	result, err := trainer.Run(ctx)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	slog.Info("Optimization complete",
		"elapsed", result.Elapsed,
		"best_cost", result.BestCost,
		"evaluations", result.Evaluations,
	)
	fmt.Printf("Best cost: %g at %v (%s, %d evaluations)\n", result.BestCost, result.BestPosition, result.Elapsed.Round(time.Millisecond), result.Evaluations)

	if !saveRun {
		return nil
	}
	return persistRun(run, result)
}

// runMayflyBaseline runs the same problem through the external Mayfly swarm
// optimizer for comparison. Constraints and integral dimensions are not
// supported by the baseline and are ignored.
func runMayflyBaseline(run *problem.Run) error {
	if !run.Constraints.Empty() {
		slog.Warn("Mayfly baseline ignores constraints")
	}

	d := run.Domain
	lower := make([]float64, d.Dims())
	upper := make([]float64, d.Dims())
	for i := range lower {
		lower[i] = d.Lower(i)
		upper[i] = d.Upper(i)
	}

	eval := func(x []float64) float64 {
		return bench.EvalPoint(run.Cost, x)
	}

	optimizer := opt.NewMayfly(run.Config.Iterations, run.Config.SampleSize, int64(run.Config.Seed))
	best, cost := optimizer.Run(eval, lower, upper, d.Dims())

	fmt.Printf("Best cost: %g at %v (mayfly baseline)\n", cost, best)
	return nil
}

func persistRun(run *problem.Run, result *qea.Result) error {
	runStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	runID := uuid.New().String()
	cfg := run.Config
	record := store.NewRunRecord(runID, result, store.RunConfig{
		Problem:        run.Name,
		Dims:           run.Domain.Dims(),
		Iterations:     cfg.Iterations,
		SampleSize:     cfg.SampleSize,
		EliteLevel:     cfg.EliteLevel,
		SigmaScaler:    cfg.SigmaScaler,
		MuScaler:       cfg.MuScaler,
		SavingInterval: cfg.SavingInterval,
		Seed:           cfg.Seed,
		Stagnation:     cfg.Stagnation,
		Constraints:    len(run.Constraints),
	})

	if err := runStore.SaveRun(runID, record); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := runStore.SaveArchive(runID, store.NewArchive(result.History)); err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}

	writer, err := store.NewHistoryWriter(dataDir, runID, false)
	if err != nil {
		return fmt.Errorf("failed to create history writer: %w", err)
	}
	defer writer.Close()

	for _, snap := range result.History {
		entry := store.HistoryEntry{
			Iteration:   snap.Iteration,
			Cost:        snap.EliteCost,
			Mean:        snap.Mean,
			Sigma:       snap.Sigma,
			Evaluations: snap.Evaluations,
			Timestamp:   record.Timestamp,
		}
		if err := writer.Write(entry); err != nil {
			return fmt.Errorf("failed to write history: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	fmt.Printf("Saved run %s under %s\n", runID, dataDir)
	return nil
}
