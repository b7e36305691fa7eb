package domain

import "time"

// BatchConfig is the immutable snapshot of run parameters captured at
// batch creation. A resumed batch reuses it unchanged so the continuation
// behaves identically to the original run.
type BatchConfig struct {
	Concurrency     int     `json:"concurrency"       yaml:"concurrency"`
	CallsPerSecond  float64 `json:"calls_per_second"  yaml:"calls_per_second"`
	MaxRetries      int     `json:"max_retries"       yaml:"max_retries"`
	ContinueOnError bool    `json:"continue_on_error" yaml:"continue_on_error"`
}

// CompletedJob records one seed that produced a result.
type CompletedJob struct {
	Seed       string `json:"input"`
	ResultPath string `json:"result_location"`
}

// FailedJob records one seed whose attempts were exhausted or rejected.
type FailedJob struct {
	Seed     string `json:"input"`
	Error    string `json:"error_message"`
	Attempts int    `json:"attempts"`
}

// BatchState is the durable progress record for one compilation run.
// It is mutated only by the runner owning the run and persisted after
// every terminal job outcome.
type BatchState struct {
	BatchID      string         `json:"batch_id"`
	StartTime    time.Time      `json:"start_time"`
	TotalSeeds   int            `json:"total_seeds"`
	Completed    []CompletedJob `json:"completed"`
	Failed       []FailedJob    `json:"failed"`
	CurrentIndex int            `json:"current_index"`
	Config       BatchConfig    `json:"config_snapshot"`
}

// NewBatchState creates the state record for a fresh batch.
func NewBatchState(batchID string, totalSeeds int, cfg BatchConfig) *BatchState {
	return &BatchState{
		BatchID:    batchID,
		StartTime:  time.Now().UTC(),
		TotalSeeds: totalSeeds,
		Completed:  []CompletedJob{},
		Failed:     []FailedJob{},
		Config:     cfg,
	}
}

// MarkCompleted records a successful outcome for a seed. A seed that
// already has an outcome is left untouched so completed and failed
// stay disjoint.
func (s *BatchState) MarkCompleted(seed, resultPath string) {
	if s.HasOutcome(seed) {
		return
	}
	s.Completed = append(s.Completed, CompletedJob{Seed: seed, ResultPath: resultPath})
	s.CurrentIndex = len(s.Completed) + len(s.Failed)
}

// MarkFailed records a terminal failure for a seed.
func (s *BatchState) MarkFailed(seed, errMsg string, attempts int) {
	if s.HasOutcome(seed) {
		return
	}
	s.Failed = append(s.Failed, FailedJob{Seed: seed, Error: errMsg, Attempts: attempts})
	s.CurrentIndex = len(s.Completed) + len(s.Failed)
}

// HasOutcome reports whether a seed already reached a terminal status.
func (s *BatchState) HasOutcome(seed string) bool {
	for _, c := range s.Completed {
		if c.Seed == seed {
			return true
		}
	}
	for _, f := range s.Failed {
		if f.Seed == seed {
			return true
		}
	}
	return false
}

// Remaining filters the original seed list down to seeds without a
// terminal outcome, preserving order.
func (s *BatchState) Remaining(seeds []string) []string {
	var out []string
	for _, seed := range seeds {
		if !s.HasOutcome(seed) {
			out = append(out, seed)
		}
	}
	return out
}

// Done reports whether every seed has a terminal outcome.
func (s *BatchState) Done() bool {
	return len(s.Completed)+len(s.Failed) >= s.TotalSeeds
}

// Summary is the end-of-batch report handed back to the caller.
type Summary struct {
	BatchID   string
	Succeeded int
	Failed    int
	Skipped   int
}
