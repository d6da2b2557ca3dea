package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marketsync/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync the configured categories on an interval until interrupted",
	Long: `Watch runs a full sync of the configured categories immediately and
then again on every interval tick. Categories run concurrently: each owns its
own database file, so their writers never contend.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("category", "", "restrict to one category")
	watchCmd.Flags().Duration("interval", 0, "override the configured watch interval")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, cat, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	category, _ := cmd.Flags().GetString("category")
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval == 0 {
		interval = cfg.Sync.WatchInterval
	}

	cats, err := selectCategories(cat, cfg, category)
	if err != nil {
		return err
	}

	stores := newStoreSet(cfg, logger)
	defer stores.Close()
	fetcher := newFetcher(cfg, logger)

	runners := make([]scheduler.Runner, 0, len(cats))
	for _, c := range cats {
		svc, err := buildService(c, stores, fetcher, logger)
		if err != nil {
			return err
		}
		runners = append(runners, svc)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(runners, interval, logger)
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
