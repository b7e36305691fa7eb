package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"charsmith/internal/core/domain"
)

// Executor performs one generation job and returns an opaque result
// location. The runner persists the location but never interprets it.
type Executor interface {
	Execute(ctx context.Context, seed string) (string, error)
}

// Runner drives a batch of seeds to completion, sequentially or with
// bounded parallelism. Every execution passes through the shared rate
// limiter: the concurrency cap bounds local parallelism, the limiter
// bounds API-facing throughput, and a high cap never bypasses it.
type Runner struct {
	store   *StateStore
	exec    Executor
	limiter *Limiter
	retry   RetryConfig
	cfg     domain.BatchConfig

	mu    sync.Mutex
	state *domain.BatchState
	halt  atomic.Bool
}

// NewRunner creates a runner for one batch configuration.
func NewRunner(store *StateStore, exec Executor, cfg domain.BatchConfig) *Runner {
	retry := DefaultRetryConfig
	if cfg.MaxRetries >= 0 {
		retry.MaxRetries = cfg.MaxRetries
	}
	return &Runner{
		store:   store,
		exec:    exec,
		limiter: NewLimiter(cfg.CallsPerSecond),
		retry:   retry,
		cfg:     cfg,
	}
}

// Run compiles a fresh batch of seeds and returns the end-of-batch
// summary. The returned error is non-nil when the batch as a whole is
// considered failed.
func (r *Runner) Run(ctx context.Context, seeds []string) (*domain.Summary, error) {
	state := domain.NewBatchState(uuid.NewString(), len(seeds), r.cfg)
	if err := r.store.Save(state); err != nil {
		return nil, fmt.Errorf("failed to persist new batch: %w", err)
	}
	slog.Info("Batch started",
		"batch_id", state.BatchID,
		"jobs", len(seeds),
		"concurrency", r.cfg.Concurrency,
		"calls_per_second", r.cfg.CallsPerSecond,
	)
	return r.run(ctx, state, seeds)
}

// run drives the pending seeds against an existing state. Used by both
// fresh runs and resumes.
func (r *Runner) run(ctx context.Context, state *domain.BatchState, pending []string) (*domain.Summary, error) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()

	// In-flight jobs run detached from the cancel signal: a job that
	// already consumed API budget must finish and persist its outcome.
	// Cancellation only stops new submissions.
	jobCtx := context.WithoutCancel(ctx)

	submitted := 0
	if r.cfg.Concurrency <= 1 {
		for _, seed := range pending {
			if ctx.Err() != nil || r.halt.Load() {
				break
			}
			submitted++
			r.executeJob(jobCtx, seed)
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(r.cfg.Concurrency)
		for _, seed := range pending {
			if ctx.Err() != nil || r.halt.Load() {
				break
			}
			submitted++
			seed := seed
			g.Go(func() error {
				r.executeJob(jobCtx, seed)
				return nil
			})
		}
		g.Wait()
	}

	return r.finish(ctx, state, len(pending)-submitted)
}

// executeJob is the single execution path shared by both modes:
// rate-limit gate, retry loop, terminal transition, persist.
func (r *Runner) executeJob(ctx context.Context, seed string) {
	job := &domain.Job{
		ID:     uuid.NewString(),
		Seed:   seed,
		Status: domain.JobPending,
	}
	job.Status = domain.JobInFlight

	op := func(ctx context.Context) (string, error) {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", err
		}
		return r.exec.Execute(ctx, seed)
	}

	result, attempts, err := RunWithRetry(ctx, op, r.retry)
	job.Attempts = attempts

	// Mutation and persist stay inside one critical section: saves must
	// land in mutation order, or a stale snapshot becomes the final
	// durable artifact and a finished job loses its recorded outcome.
	r.mu.Lock()
	if err != nil {
		job.Status = domain.JobFailed
		job.LastCategory = Classify(err)
		r.state.MarkFailed(seed, err.Error(), attempts)
	} else {
		job.Status = domain.JobSucceeded
		r.state.MarkCompleted(seed, result)
	}
	batchID := r.state.BatchID
	saveErr := r.store.Save(r.state)
	r.mu.Unlock()

	if saveErr != nil {
		slog.Error("Failed to persist batch state", "batch_id", batchID, "error", saveErr)
	}

	if err != nil {
		slog.Warn("Job failed",
			"batch_id", batchID,
			"job_id", job.ID,
			"attempts", attempts,
			"category", job.LastCategory,
			"error", err,
		)
		if !r.cfg.ContinueOnError {
			// Stop submitting new jobs; already-dispatched ones are
			// awaited so their outcomes land in the state file.
			r.halt.Store(true)
		}
		return
	}

	slog.Info("Job completed",
		"batch_id", batchID,
		"job_id", job.ID,
		"attempts", attempts,
		"result", result,
	)
}

func (r *Runner) finish(ctx context.Context, state *domain.BatchState, skipped int) (*domain.Summary, error) {
	r.mu.Lock()
	summary := &domain.Summary{
		BatchID:   state.BatchID,
		Succeeded: len(state.Completed),
		Failed:    len(state.Failed),
		Skipped:   skipped,
	}
	fullyDone := state.Done() && len(state.Failed) == 0
	failedCount := len(state.Failed)
	r.mu.Unlock()

	// A fully successful batch no longer needs its recovery state.
	// Batches with failures keep theirs until explicit cleanup so the
	// failure record survives.
	if fullyDone {
		if err := r.store.Delete(state.BatchID); err != nil {
			slog.Warn("Failed to remove finished batch state", "batch_id", state.BatchID, "error", err)
		}
	}

	slog.Info("Batch finished",
		"batch_id", summary.BatchID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch %s cancelled: %w", state.BatchID, err)
	}
	if !r.cfg.ContinueOnError && failedCount > 0 {
		return summary, fmt.Errorf("batch %s failed: %s", state.BatchID, state.Failed[0].Error)
	}
	return summary, nil
}
