package app

import (
	"fmt"
	"log/slog"

	"marketsync/internal/catalog"
	"marketsync/internal/config"
	"marketsync/internal/service"
	"marketsync/internal/source/tushare"
	"marketsync/internal/storage/duckdb"
)

// calendarCategory is where trade_cal lives; every trading-day plan reads it.
const calendarCategory = "basic"

// storeSet opens at most one store per category database file, so that all
// readers and writers of a file within the process share one connection pool
// (the file supports a single writer).
type storeSet struct {
	cfg    *config.Config
	logger *slog.Logger
	open   map[string]*duckdb.Store
}

func newStoreSet(cfg *config.Config, logger *slog.Logger) *storeSet {
	return &storeSet{
		cfg:    cfg,
		logger: logger,
		open:   make(map[string]*duckdb.Store),
	}
}

func (s *storeSet) get(category string) (*duckdb.Store, error) {
	if store, ok := s.open[category]; ok {
		return store, nil
	}
	store, err := duckdb.Open(s.cfg.Storage.DBPath(category), s.logger)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", category, err)
	}
	s.open[category] = store
	return store, nil
}

func (s *storeSet) Close() {
	for name, store := range s.open {
		if err := store.Close(); err != nil {
			s.logger.Warn("closing store failed", "category", name, "error", err)
		}
	}
}

func newFetcher(cfg *config.Config, logger *slog.Logger) *tushare.Fetcher {
	client := tushare.NewClient(tushare.Config{
		BaseURL:        cfg.API.BaseURL,
		Token:          cfg.API.Token,
		Timeout:        cfg.API.Timeout,
		MaxAttempts:    cfg.API.Retry.MaxAttempts,
		InitialBackoff: cfg.API.Retry.InitialBackoff,
		MaxBackoff:     cfg.API.Retry.MaxBackoff,
		Cooldown:       cfg.API.Retry.Cooldown,
	}, logger)
	return tushare.NewFetcher(client, logger)
}

// buildService assembles one category's sync stack on top of the shared
// store set and fetcher.
func buildService(
	cat catalog.Category,
	stores *storeSet,
	fetcher *tushare.Fetcher,
	logger *slog.Logger,
) (*service.SyncService, error) {
	store, err := stores.get(cat.Name)
	if err != nil {
		return nil, err
	}
	calStore, err := stores.get(calendarCategory)
	if err != nil {
		return nil, err
	}

	meta := duckdb.NewMetadataStore(store)
	writer := duckdb.NewWriter(store, meta, logger)
	planner := service.NewPlanner(duckdb.NewCalendar(calStore), logger)

	return service.NewSyncService(cat, fetcher, writer, meta, store, planner, logger), nil
}
