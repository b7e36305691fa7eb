package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"charsmith/internal/batch"
)

var flagBatchID string

var resumeCmd = &cobra.Command{
	Use:   "resume <seed-file>",
	Short: "Resume an interrupted batch from its saved state",
	Long: `Loads the saved state for a batch (by --batch-id, or the most
recent one) and resubmits only the seeds without a recorded outcome,
under the batch's original settings. Completed work is never redone.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&flagBatchID, "batch-id", "", "batch to resume (default: most recent)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	seeds, err := batch.ReadSeedFile(args[0])
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seeds in %s", args[0])
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := batch.Resume(ctx, store, exec, seeds, flagBatchID)
	if summary != nil {
		printSummary(summary)
	}
	return err
}
