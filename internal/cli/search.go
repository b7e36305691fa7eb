package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var flagLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over the draft library",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var showCmd = &cobra.Command{
	Use:   "show <draft-id>",
	Short: "Print a draft from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	searchCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum results")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	db, repo, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	drafts, err := repo.Search(context.Background(), args[0], flagLimit)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		fmt.Fprintln(os.Stdout, "no matches")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSEED\tCREATED")
	for _, d := range drafts {
		seed := d.Seed
		if len(seed) > 48 {
			seed = seed[:45] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.ID, d.Name, seed, d.CreatedAt.Local().Format(time.RFC3339))
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	db, repo, err := openLibrary()
	if err != nil {
		return err
	}
	defer db.Close()

	draft, err := repo.GetByID(context.Background(), args[0])
	if err != nil {
		return err
	}
	if draft == nil {
		return fmt.Errorf("draft %s not found", args[0])
	}
	fmt.Fprintln(os.Stdout, draft.Content)
	return nil
}
