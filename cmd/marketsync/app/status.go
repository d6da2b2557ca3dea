package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
	"marketsync/internal/storage/duckdb"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-table coverage metadata",
	Long: `Status prints each managed table's covered date range, row count and
last sync time. With --detail and --table it prints per-day row counts for
one table and flags trading days with no stored rows.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("category", "", "restrict to one category")
	statusCmd.Flags().Bool("detail", false, "per-day breakdown for one table (requires --table)")
	statusCmd.Flags().String("table", "", "table for the per-day breakdown (implies --detail)")
	statusCmd.Flags().String("start", "", "detail window start YYYYMMDD")
	statusCmd.Flags().String("end", "", "detail window end YYYYMMDD")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, cat, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	category, _ := flags.GetString("category")
	detail, _ := flags.GetBool("detail")
	tableName, _ := flags.GetString("table")
	start, _ := flags.GetString("start")
	end, _ := flags.GetString("end")

	stores := newStoreSet(cfg, logger)
	defer stores.Close()

	if detail || tableName != "" {
		if tableName == "" {
			return fmt.Errorf("--detail requires --table")
		}
		return printDetail(cmd, cat, stores, tableName, start, end, cfg.Sync.Exchange)
	}

	cats, err := selectCategories(cat, cfg, category)
	if err != nil {
		return err
	}

	out := tablewriter.NewWriter(os.Stdout)
	out.Header("CATEGORY", "TABLE", "MIN DATE", "MAX DATE", "ROWS", "LAST SYNCED")
	for _, c := range cats {
		store, err := stores.get(c.Name)
		if err != nil {
			return err
		}
		meta := duckdb.NewMetadataStore(store)
		covs, err := meta.All(cmd.Context())
		if err != nil {
			return err
		}
		for _, cov := range covs {
			_ = out.Append([]string{
				c.Name,
				cov.Table,
				orDash(cov.MinDate),
				orDash(cov.MaxDate),
				fmt.Sprintf("%d", cov.RowCount),
				formatSynced(cov.LastSynced),
			})
		}
	}
	return out.Render()
}

func printDetail(cmd *cobra.Command, cat *catalog.Catalog, stores *storeSet, tableName, start, end, exchange string) error {
	spec, owner, ok := cat.Lookup(tableName)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownTable, tableName)
	}

	store, err := stores.get(owner.Name)
	if err != nil {
		return err
	}
	meta := duckdb.NewMetadataStore(store)
	cov, err := meta.Get(cmd.Context(), spec.Name)
	if err != nil {
		return err
	}

	if start == "" {
		start = cov.MinDate
	}
	if end == "" {
		end = cov.MaxDate
	}
	if start == "" || end == "" {
		fmt.Printf("%s: never synced\n", spec.Name)
		return nil
	}

	counts, err := store.DailyCounts(cmd.Context(), spec, start, end)
	if err != nil {
		return err
	}

	out := tablewriter.NewWriter(os.Stdout)
	out.Header("DATE", "ROWS")
	for _, c := range counts {
		_ = out.Append([]string{c.Date, fmt.Sprintf("%d", c.Count)})
	}
	if err := out.Render(); err != nil {
		return err
	}

	calStore, err := stores.get(calendarCategory)
	if err != nil {
		return err
	}
	if exchange == "" {
		exchange = "SSE"
	}
	tradingDays, err := duckdb.NewCalendar(calStore).TradeDates(cmd.Context(), exchange, start, end)
	if err != nil {
		return err
	}
	if len(tradingDays) == 0 {
		fmt.Println("no trading calendar loaded; gap check skipped")
		return nil
	}

	gaps := duckdb.GapDays(tradingDays, counts)
	if len(gaps) == 0 {
		fmt.Printf("%s: no gap days in %s..%s\n", spec.Name, start, end)
	} else {
		fmt.Printf("%s: %d gap days: %s\n", spec.Name, len(gaps), strings.Join(gaps, ", "))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatSynced(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
