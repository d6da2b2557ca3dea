package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketsync/internal/storage/duckdb"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create tables and coverage metadata without syncing",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("category", "", "category to initialize (default: configured categories, else all)")
}

func runInit(cmd *cobra.Command, _ []string) error {
	cfg, cat, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	category, _ := cmd.Flags().GetString("category")
	cats, err := selectCategories(cat, cfg, category)
	if err != nil {
		return err
	}

	stores := newStoreSet(cfg, logger)
	defer stores.Close()

	for _, c := range cats {
		store, err := stores.get(c.Name)
		if err != nil {
			return err
		}
		if err := duckdb.NewMetadataStore(store).EnsureMetadataTable(cmd.Context()); err != nil {
			return fmt.Errorf("init %s metadata: %w", c.Name, err)
		}
		for _, spec := range c.Tables {
			if err := store.EnsureTable(cmd.Context(), spec); err != nil {
				return fmt.Errorf("init %s: %w", spec.Name, err)
			}
		}
		logger.Info("category initialized", "category", c.Name, "tables", len(c.Tables), "path", store.Path())
	}
	return nil
}
