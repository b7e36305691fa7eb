package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"charsmith/internal/batch"
)

var generateCmd = &cobra.Command{
	Use:   "generate <seed>",
	Short: "Generate one character sheet from a seed",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	exec, closeLib, err := newExecutor()
	if err != nil {
		return err
	}
	defer closeLib()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	op := func(ctx context.Context) (string, error) {
		return exec.Execute(ctx, args[0])
	}
	retry := batch.DefaultRetryConfig
	retry.MaxRetries = cfg.Batch.MaxRetries

	path, attempts, err := batch.RunWithRetry(ctx, op, retry)
	if err != nil {
		return fmt.Errorf("generation failed after %d attempt(s): %w", attempts, err)
	}

	fmt.Fprintln(os.Stdout, path)
	return nil
}
