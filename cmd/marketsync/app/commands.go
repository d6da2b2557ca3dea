// Package app wires the marketsync commands: sync, status, init, watch.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"marketsync/internal/catalog"
	"marketsync/internal/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "marketsync",
	Short: "Incremental market data synchronization into per-category DuckDB files",
	Long: `marketsync pulls paginated, rate-limited market data from a tushare-style
API into embedded DuckDB files, one per table category, reconciling each batch
against what is already stored and tracking per-table date coverage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().String("config", "config.yaml", "path to config file")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("marketsync %s (%s)\n", version, runtime.Version())
	},
}

// setup loads configuration and builds the logger and catalog shared by
// every command.
func setup(cmd *cobra.Command) (*config.Config, *catalog.Catalog, *slog.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, nil, err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load config: %w", err)
		}
	} else if cmd.Flags().Changed("config") {
		return nil, nil, nil, fmt.Errorf("load config: %w", statErr)
	}

	logger := setupLogger(cfg.LogLevel)

	cat, err := catalog.Builtin()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	return cfg, cat, logger, nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

// selectCategories resolves the --category flag against the catalog, falling
// back to the configured list and then to every category.
func selectCategories(cat *catalog.Catalog, cfg *config.Config, requested string) ([]catalog.Category, error) {
	if requested != "" {
		c, ok := cat.Category(requested)
		if !ok {
			return nil, fmt.Errorf("unknown category %q (have: %v)", requested, cat.CategoryNames())
		}
		return []catalog.Category{c}, nil
	}
	if len(cfg.Sync.Categories) > 0 {
		out := make([]catalog.Category, 0, len(cfg.Sync.Categories))
		for _, name := range cfg.Sync.Categories {
			c, ok := cat.Category(name)
			if !ok {
				return nil, fmt.Errorf("configured category %q not in catalog", name)
			}
			out = append(out, c)
		}
		return out, nil
	}
	return cat.Categories(), nil
}
