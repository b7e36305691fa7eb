package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"charsmith/internal/batch"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List saved batch states",
	Args:  cobra.NoArgs,
	RunE:  runBatches,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove batch states past the retention window",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

var flagOlderThan time.Duration

func init() {
	cleanCmd.Flags().DurationVar(&flagOlderThan, "older-than", 0, "retention window (default from config)")
	rootCmd.AddCommand(batchesCmd)
	rootCmd.AddCommand(cleanCmd)
}

func runBatches(cmd *cobra.Command, args []string) error {
	store, err := batch.NewStateStore(cfg.State.Dir)
	if err != nil {
		return err
	}
	states, err := store.List()
	if err != nil {
		return err
	}
	if len(states) == 0 {
		fmt.Fprintln(os.Stdout, "no saved batches")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BATCH ID\tSTARTED\tPROGRESS\tFAILED")
	for _, s := range states {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d\n",
			s.BatchID,
			s.StartTime.Local().Format(time.RFC3339),
			len(s.Completed)+len(s.Failed), s.TotalSeeds,
			len(s.Failed),
		)
	}
	return w.Flush()
}

func runClean(cmd *cobra.Command, args []string) error {
	store, err := batch.NewStateStore(cfg.State.Dir)
	if err != nil {
		return err
	}

	olderThan := cfg.State.Retention
	if cmd.Flags().Changed("older-than") {
		olderThan = flagOlderThan
	}
	if olderThan <= 0 {
		return fmt.Errorf("retention window must be positive (got %v)", olderThan)
	}

	removed, err := store.Clean(olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "removed %d batch state(s)\n", removed)
	return nil
}
