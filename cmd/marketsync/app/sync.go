package app

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"marketsync/internal/catalog"
	"marketsync/internal/config"
	"marketsync/internal/domain"
	"marketsync/internal/service"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync one or more categories from the remote API",
	Long: `Sync pulls remote records for the selected categories (or specific
tables) into their DuckDB files. The date window defaults to each table's
full history; storage mode defaults to incremental insert-new.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("category", "", "category to sync (default: configured categories, else all)")
	syncCmd.Flags().StringSlice("tables", nil, "restrict to specific tables")
	syncCmd.Flags().String("start", "", "start date YYYYMMDD")
	syncCmd.Flags().String("end", "", "end date YYYYMMDD")
	syncCmd.Flags().String("mode", "", "storage mode: insert, replace, dedup")
	syncCmd.Flags().StringSlice("ts-code", nil, "restrict to specific instrument codes")
	syncCmd.Flags().String("exchange", "", "exchange for trading-day expansion (default from config)")
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, cat, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	category, _ := flags.GetString("category")
	tables, _ := flags.GetStringSlice("tables")
	start, _ := flags.GetString("start")
	end, _ := flags.GetString("end")
	modeStr, _ := flags.GetString("mode")
	tsCodes, _ := flags.GetStringSlice("ts-code")
	exchange, _ := flags.GetString("exchange")

	mode, ok := domain.ParseStorageMode(modeStr)
	if !ok {
		return fmt.Errorf("unknown storage mode %q", modeStr)
	}
	if exchange == "" {
		exchange = cfg.Sync.Exchange
	}

	targets, err := resolveTargets(cat, cfg, category, tables)
	if err != nil {
		return err
	}

	stores := newStoreSet(cfg, logger)
	defer stores.Close()
	fetcher := newFetcher(cfg, logger)

	var reports []*domain.Report
	for _, target := range targets {
		svc, err := buildService(target.category, stores, fetcher, logger)
		if err != nil {
			return err
		}
		report, err := svc.Sync(cmd.Context(), service.SyncRequest{
			Tables:   target.tables,
			Start:    start,
			End:      end,
			Mode:     mode,
			TSCodes:  tsCodes,
			Exchange: exchange,
		})
		if err != nil {
			return fmt.Errorf("sync %s: %w", target.category.Name, err)
		}
		reports = append(reports, report)
	}

	printReports(reports)

	for _, r := range reports {
		if !r.OK() {
			return fmt.Errorf("sync finished with failures")
		}
	}
	return nil
}

// syncTarget is one category plus an optional table restriction.
type syncTarget struct {
	category catalog.Category
	tables   []string
}

// resolveTargets turns the category/tables flags into per-category work. An
// explicit table list is grouped by owning category; table names unknown to
// the catalog fail here, before anything is fetched.
func resolveTargets(cat *catalog.Catalog, cfg *config.Config, category string, tables []string) ([]syncTarget, error) {
	if len(tables) == 0 {
		cats, err := selectCategories(cat, cfg, category)
		if err != nil {
			return nil, err
		}
		targets := make([]syncTarget, len(cats))
		for i, c := range cats {
			targets[i] = syncTarget{category: c}
		}
		return targets, nil
	}

	grouped := make(map[string]*syncTarget)
	var order []string
	for _, name := range tables {
		spec, owner, ok := cat.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTable, name)
		}
		if category != "" && owner.Name != category {
			return nil, fmt.Errorf("table %s belongs to category %s, not %s", spec.Name, owner.Name, category)
		}
		t, seen := grouped[owner.Name]
		if !seen {
			t = &syncTarget{category: owner}
			grouped[owner.Name] = t
			order = append(order, owner.Name)
		}
		t.tables = append(t.tables, spec.Name)
	}

	targets := make([]syncTarget, len(order))
	for i, name := range order {
		targets[i] = *grouped[name]
	}
	return targets, nil
}

func printReports(reports []*domain.Report) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("CATEGORY", "TABLE", "UNITS", "WRITTEN", "SKIPPED", "FAILED", "STATUS")
	for _, r := range reports {
		for _, t := range r.Tables {
			status := "ok"
			if t.Aborted {
				status = "aborted"
			} else if t.Failed > 0 {
				status = "partial"
			}
			_ = table.Append([]string{
				r.Category,
				t.Table,
				fmt.Sprintf("%d/%d", t.UnitsFetched, t.UnitsPlanned),
				fmt.Sprintf("%d", t.Written),
				fmt.Sprintf("%d", t.Skipped),
				fmt.Sprintf("%d", t.Failed),
				status,
			})
		}
	}
	_ = table.Render()
}
