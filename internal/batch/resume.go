package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"charsmith/internal/core/domain"
)

// Resume reconstructs an interrupted batch from persisted state and
// drives only the seeds without a terminal outcome, under the original
// config snapshot. batchID may be empty to pick the most recent batch.
//
// Missing or corrupt state fails fast: silently starting a fresh batch
// would duplicate completed work and re-spend API budget.
func Resume(ctx context.Context, store *StateStore, exec Executor, seeds []string, batchID string) (*domain.Summary, error) {
	var (
		state *domain.BatchState
		err   error
	)
	if batchID == "" {
		state, err = store.LoadMostRecent()
	} else {
		state, err = store.Load(batchID)
	}
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, fmt.Errorf("cannot resume: %w (run 'charsmith batches' to list saved batches)", err)
		}
		if errors.Is(err, ErrStateCorrupt) {
			return nil, fmt.Errorf("cannot resume: %w (delete the state file or pick another batch; refusing to restart from scratch)", err)
		}
		return nil, fmt.Errorf("cannot resume: %w", err)
	}

	pending := state.Remaining(seeds)
	slog.Info("Resuming batch",
		"batch_id", state.BatchID,
		"completed", len(state.Completed),
		"failed", len(state.Failed),
		"pending", len(pending),
	)

	if len(pending) == 0 {
		runner := NewRunner(store, exec, state.Config)
		return runner.finish(ctx, state, 0)
	}

	runner := NewRunner(store, exec, state.Config)
	return runner.run(ctx, state, pending)
}
