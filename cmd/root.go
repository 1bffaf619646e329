package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/titlematch/internal/config"
)

type rootOptions struct {
	configPath string
	books      string
	series     string
	logLevel   string
	verbose    bool
}

// loadConfig reads the config file and environment, then applies catalog flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.books != "" {
		cfg.Catalog.Books = o.books
	}
	if o.series != "" {
		cfg.Catalog.Series = o.series
	}
	return cfg, nil
}

func (o *rootOptions) setupLogging() error {
	level := slog.LevelInfo
	if o.logLevel != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(o.logLevel))); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", o.logLevel, err)
		}
	}
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "titlematch",
		Short: "Resolve free-text book requests against a book catalog",
		Long: `Titlematch resolves free-text book requests such as "harry potter by jk rowling"
to a single book or series in a catalog, using fuzzy title matching, author filtering
and popularity-aware tie-breaking.

The catalog is loaded from Parquet, JSONL, CSV or SQLite tables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return opts.setupLogging()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config file (or TITLEMATCH_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.books, "books", "", "Books table (.parquet, .jsonl, .csv, .db); overrides catalog.books")
	cmd.PersistentFlags().StringVar(&opts.series, "series", "", "Series table; overrides catalog.series")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging (same as --log-level debug)")

	// Add subcommands
	cmd.AddCommand(newResolveCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newInspectCmd(opts))
	cmd.AddCommand(newEvalCmd(opts))

	return cmd
}
