package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"charsmith/internal/batch"
	"charsmith/internal/core/domain"
)

var (
	flagConcurrency     int
	flagCallsPerSecond  float64
	flagMaxRetries      int
	flagContinueOnError bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <seed-file>",
	Short: "Compile a file of seeds into character sheets",
	Long: `Reads one seed per line (blank lines and # comments skipped) and
drives them through the rate-limited batch compiler. Progress is
persisted after every job, so an interrupted run can be picked up
with 'charsmith resume'.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "jobs in flight at once (default from config)")
	batchCmd.Flags().Float64Var(&flagCallsPerSecond, "rate", 0, "API calls per second, 0 keeps config value")
	batchCmd.Flags().IntVar(&flagMaxRetries, "max-retries", -1, "retries per job after the first attempt")
	batchCmd.Flags().BoolVar(&flagContinueOnError, "continue-on-error", true, "keep going after a job fails")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	seeds, err := batch.ReadSeedFile(args[0])
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seeds in %s", args[0])
	}

	batchCfg := cfg.Batch
	if cmd.Flags().Changed("concurrency") {
		batchCfg.Concurrency = flagConcurrency
	}
	if cmd.Flags().Changed("rate") {
		batchCfg.CallsPerSecond = flagCallsPerSecond
	}
	if cmd.Flags().Changed("max-retries") {
		batchCfg.MaxRetries = flagMaxRetries
	}
	if cmd.Flags().Changed("continue-on-error") {
		batchCfg.ContinueOnError = flagContinueOnError
	}

	store, err := batch.NewStateStore(cfg.State.Dir)
	if err != nil {
		return err
	}
	exec, closeLib, err := newExecutor()
	if err != nil {
		return err
	}
	defer closeLib()

	// A signal stops new submissions; in-flight jobs finish and persist.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(store, exec, batchCfg)
	summary, err := runner.Run(ctx, seeds)
	if summary != nil {
		printSummary(summary)
	}
	return err
}

func printSummary(s *domain.Summary) {
	fmt.Fprintf(os.Stdout, "batch %s: %d succeeded, %d failed, %d skipped\n",
		s.BatchID, s.Succeeded, s.Failed, s.Skipped)
}
