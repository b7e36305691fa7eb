// Package cli wires the charsmith commands.
package cli

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"charsmith/internal/core/config"
	"charsmith/internal/infra/genapi"
	"charsmith/internal/infra/storage/sqlite"
)

var (
	cfgPath string
	isDebug bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "charsmith",
	Short: "Generate structured character sheets from seed text",
	Long: `charsmith asks a generative API to produce structured character
content from seed text, one seed at a time or as crash-safe,
rate-limited batches, and keeps accepted drafts in a searchable
library.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "charsmith.yaml", "config file")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// setup loads .env, the config file (defaults when the default path is
// absent) and initializes the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var err error
	if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) && !cmd.Flags().Changed("config") {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
	}

	if cfg.API.APIKey == "" {
		cfg.API.APIKey = os.Getenv("CHARSMITH_API_KEY")
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})))
	return nil
}

// newExecutor builds the generation client, backed by the draft library
// when one is configured. The returned closer is a no-op without a
// library.
func newExecutor() (*genapi.Client, func(), error) {
	closer := func() {}
	var saver genapi.DraftSaver

	if cfg.Library.Path != "" {
		db, err := sqlite.Open(cfg.Library.Path)
		if err != nil {
			return nil, nil, err
		}
		saver = sqlite.NewDraftRepository(db)
		closer = func() { db.Close() }
	}
	return genapi.NewClient(cfg.API, cfg.Drafts.Dir, saver), closer, nil
}

// openLibrary opens the configured draft library for the read commands.
func openLibrary() (*sqlite.DB, *sqlite.DraftRepository, error) {
	if cfg.Library.Path == "" {
		return nil, nil, errors.New("no library configured (set library.path in the config file)")
	}
	db, err := sqlite.Open(cfg.Library.Path)
	if err != nil {
		return nil, nil, err
	}
	return db, sqlite.NewDraftRepository(db), nil
}
