package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/qevo/internal/bench"
	"github.com/cwbudde/qevo/internal/qea"
	"github.com/cwbudde/qevo/internal/store"
)

// runJob executes an optimization job in the background.
// If runStore is not nil, the run record and archive are persisted on
// completion.
func runJob(ctx context.Context, jm *JobManager, runStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "problem", job.Config.Problem, "dims", job.Config.Dims)

	problem, err := bench.Lookup(job.Config.Problem, job.Config.Dims)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	config := qea.Config{
		Iterations:     job.Config.Iterations,
		SampleSize:     job.Config.SampleSize,
		EliteLevel:     job.Config.EliteLevel,
		SigmaScaler:    job.Config.SigmaScaler,
		MuScaler:       job.Config.MuScaler,
		SavingInterval: job.Config.SavingInterval,
		Seed:           job.Config.Seed,
		Stagnation:     job.Config.Stagnation,
	}

	// The trainer's progress callback is the single source of progress
	// updates: it refreshes the job record and feeds the SSE broadcaster.
	start := time.Now()
	config.Progress = func(iteration, total int, eliteCost float64) {
		if err := jm.UpdateJob(jobID, func(j *Job) {
			j.Iteration = iteration
			j.BestCost = eliteCost
			j.Evaluations = iteration * j.Config.SampleSize
		}); err != nil {
			slog.Debug("Progress update for unknown job", "job_id", jobID, "error", err)
		}
		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:     jobID,
			State:     StateRunning,
			Iteration: iteration,
			Total:     total,
			Percent:   100 * float64(iteration) / float64(total),
			BestCost:  eliteCost,
			EPS:       evalsPerSecond(iteration*config.SampleSize, time.Since(start)),
			Timestamp: time.Now(),
		})
	}

	trainer := qea.NewTrainer(problem.Cost, problem.Domain, nil, config)
	result, err := trainer.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			markJobCancelled(jm, jobID)
			return ctx.Err()
		}
		markJobFailed(jm, jobID, err)
		return err
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestPosition = result.BestPosition
		j.BestCost = result.BestCost
		j.Iteration = trainer.Config().Iterations
		j.Evaluations = result.Evaluations
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", result.Elapsed,
		"best_cost", result.BestCost,
		"evaluations", result.Evaluations,
	)

	if runStore != nil {
		record := store.NewRunRecord(jobID, result, job.Config)
		if err := runStore.SaveRun(jobID, record); err != nil {
			slog.Warn("Failed to persist run record", "job_id", jobID, "error", err)
		} else if err := runStore.SaveArchive(jobID, store.NewArchive(result.History)); err != nil {
			slog.Warn("Failed to persist run archive", "job_id", jobID, "error", err)
		}
	}

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Iteration: trainer.Config().Iterations,
		Total:     trainer.Config().Iterations,
		Percent:   100,
		BestCost:  result.BestCost,
		EPS:       evalsPerSecond(result.Evaluations, result.Elapsed),
		Timestamp: time.Now(),
	})

	return nil
}

// evalsPerSecond computes throughput, guarding against zero elapsed time.
func evalsPerSecond(evaluations int, elapsed time.Duration) float64 {
	if elapsed.Seconds() <= 0 {
		return 0
	}
	return float64(evaluations) / elapsed.Seconds()
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
