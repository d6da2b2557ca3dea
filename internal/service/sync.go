package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
)

// SyncRequest selects what one run covers. Zero value means every table in
// the category over its default window with incremental insert.
type SyncRequest struct {
	Tables   []string
	Start    string
	End      string
	Mode     domain.StorageMode
	TSCodes  []string
	Exchange string
}

// SyncService drives one category's sync: plan, fetch, reconcile, record
// coverage, table by table.
type SyncService struct {
	category catalog.Category
	fetcher  Fetcher
	writer   Writer
	meta     MetadataStore
	schema   SchemaManager
	planner  *Planner
	logger   *slog.Logger
}

func NewSyncService(
	category catalog.Category,
	fetcher Fetcher,
	writer Writer,
	meta MetadataStore,
	schema SchemaManager,
	planner *Planner,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		category: category,
		fetcher:  fetcher,
		writer:   writer,
		meta:     meta,
		schema:   schema,
		planner:  planner,
		logger:   logger.With("category", category.Name),
	}
}

func (s *SyncService) Category() string { return s.category.Name }

// Run syncs the whole category with defaults; the scheduler's entry point.
func (s *SyncService) Run(ctx context.Context) (*domain.Report, error) {
	return s.Sync(ctx, SyncRequest{})
}

func (s *SyncService) Sync(ctx context.Context, req SyncRequest) (*domain.Report, error) {
	started := time.Now()
	report := &domain.Report{
		RunID:    uuid.NewString(),
		Category: s.category.Name,
		Started:  started,
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.ModeInsertNew
	}

	specs, err := s.resolveTables(req.Tables)
	if err != nil {
		return nil, err
	}
	if err := validateRange(req.Start, req.End); err != nil {
		return nil, err
	}

	s.logger.Info("starting sync",
		"run_id", report.RunID,
		"tables", len(specs),
		"mode", string(mode),
		"start", req.Start,
		"end", req.End,
	)

	if err := s.meta.EnsureMetadataTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure metadata table: %w", err)
	}
	for _, spec := range specs {
		if err := s.schema.EnsureTable(ctx, spec); err != nil {
			return nil, fmt.Errorf("ensure table %s: %w", spec.Name, err)
		}
	}

	for _, spec := range specs {
		stats := s.syncTable(ctx, spec, mode, req)
		report.Tables = append(report.Tables, stats)
		if ctx.Err() != nil {
			report.Duration = time.Since(started)
			return report, ctx.Err()
		}
	}

	report.Duration = time.Since(started)
	written, skipped, failed := report.Totals()
	s.logger.Info("sync completed",
		"run_id", report.RunID,
		"written", written,
		"skipped", skipped,
		"failed_units", failed,
		"duration", report.Duration,
	)
	return report, nil
}

// resolveTables maps the request onto the category; unknown names are a
// configuration error and abort before any fetch.
func (s *SyncService) resolveTables(names []string) ([]catalog.TableSpec, error) {
	if len(names) == 0 {
		return s.category.Tables, nil
	}
	specs := make([]catalog.TableSpec, 0, len(names))
	for _, name := range names {
		spec, ok := s.category.Table(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s not in category %s", domain.ErrUnknownTable, name, s.category.Name)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (s *SyncService) syncTable(ctx context.Context, spec catalog.TableSpec, mode domain.StorageMode, req SyncRequest) domain.SyncStats {
	stats := domain.SyncStats{Table: spec.Name}
	logger := s.logger.With("table", spec.Name)

	cov, err := s.meta.Get(ctx, spec.Name)
	if err != nil {
		logger.Error("read coverage failed", "error", err)
		stats.Aborted = true
		stats.Err = err
		return stats
	}

	units, err := s.planner.Plan(ctx, spec, cov, PlanRequest{
		Start:    req.Start,
		End:      req.End,
		Exchange: req.Exchange,
		TSCodes:  req.TSCodes,
	})
	if err != nil {
		logger.Error("planning failed", "error", err)
		stats.Aborted = true
		stats.Err = err
		return stats
	}
	stats.UnitsPlanned = len(units)
	if len(units) == 0 {
		logger.Debug("empty plan, skipping")
		return stats
	}
	logger.Info("plan ready", "units", len(units), "strategy", string(spec.Strategy))

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			stats.Aborted = true
			stats.Err = err
			return stats
		}

		var res domain.WriteResult
		if unit.Kind == domain.UnitPaging {
			res, err = s.syncPagingUnit(ctx, spec, unit, mode)
		} else {
			res, err = s.syncUnit(ctx, spec, unit, mode)
		}
		if err != nil {
			stats.Failed++
			if errors.Is(err, domain.ErrStorage) {
				logger.Error("storage failure, aborting table", "error", err)
				stats.Aborted = true
				stats.Err = err
				return stats
			}
			logger.Warn("unit failed, continuing",
				"kind", string(unit.Kind),
				"date", unit.TradeDate,
				"error", err,
			)
			continue
		}
		stats.UnitsFetched++
		stats.Written += res.Written
		stats.Skipped += res.Skipped
	}

	logger.Info("table synced",
		"written", stats.Written,
		"skipped", stats.Skipped,
		"failed_units", stats.Failed,
	)
	return stats
}

// syncUnit handles day and range units: the whole unit is buffered, then
// applied in one transaction.
func (s *SyncService) syncUnit(ctx context.Context, spec catalog.TableSpec, unit domain.FetchUnit, mode domain.StorageMode) (domain.WriteResult, error) {
	rows, err := s.fetcher.Fetch(ctx, spec.API(), spec.APIFields(), unit.Params, unit.PageSize)
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("fetch %s: %w", spec.API(), err)
	}
	if rows.Len() == 0 {
		// Could be a holiday, a not-yet-published day, or silent upstream
		// trouble; the remote gives no way to tell them apart.
		s.logger.Debug("unit returned no rows",
			"table", spec.Name, "date", unit.TradeDate, "start", unit.StartDate, "end", unit.EndDate)
		return domain.WriteResult{}, nil
	}

	batch := domain.RecordBatch{
		Table:  spec.Name,
		Fields: rows.Fields,
		Rows:   rows.Items,
		Unit:   unit,
	}
	return s.writer.Apply(ctx, spec, batch, mode, applyOptions(spec, unit))
}

// syncPagingUnit streams the remote catalog page by page so full-paging
// tables never buffer entirely; each page is reconciled as it arrives and
// paging stops once a page holds nothing newer than the local watermark.
// Replace mode buffers instead: the snapshot delete must precede all inserts.
func (s *SyncService) syncPagingUnit(ctx context.Context, spec catalog.TableSpec, unit domain.FetchUnit, mode domain.StorageMode) (domain.WriteResult, error) {
	if mode == domain.ModeReplace {
		return s.syncUnit(ctx, spec, unit, mode)
	}

	var total domain.WriteResult
	pages, err := s.fetcher.FetchPages(ctx, spec.API(), spec.APIFields(), unit.Params, unit.PageSize,
		func(page domain.Rows) (bool, error) {
			batch := domain.RecordBatch{
				Table:  spec.Name,
				Fields: page.Fields,
				Rows:   page.Items,
				Unit:   unit,
			}
			res, err := s.writer.Apply(ctx, spec, batch, mode, applyOptions(spec, unit))
			if err != nil {
				return false, err
			}
			total.Written += res.Written
			total.Skipped += res.Skipped

			stop := unit.Watermark != "" && !hasNewerThan(spec, page, unit.Watermark)
			return stop, nil
		})
	if err != nil {
		return total, fmt.Errorf("page through %s: %w", spec.API(), err)
	}
	s.logger.Debug("paging finished", "table", spec.Name, "pages", pages)
	return total, nil
}

// applyOptions derives the writer's delete scope from the unit: day units
// bound replace deletes to their day, range units to their window, paging
// units leave the bounds empty (snapshot replace). Grid parameters that map
// to stored columns narrow the delete further, so sibling grid units (one
// per exchange, say) never clear each other's rows.
func applyOptions(spec catalog.TableSpec, unit domain.FetchUnit) domain.ApplyOptions {
	opts := domain.ApplyOptions{TSCode: unit.Params["ts_code"]}
	switch unit.Kind {
	case domain.UnitDay:
		opts.StartDate = unit.TradeDate
		opts.EndDate = unit.TradeDate
	case domain.UnitRange:
		opts.StartDate = unit.StartDate
		opts.EndDate = unit.EndDate
	}
	for param, value := range unit.GridParams {
		if param == "ts_code" {
			continue
		}
		col := spec.MappedField(param)
		if !spec.HasColumn(col) {
			continue
		}
		if opts.Scope == nil {
			opts.Scope = make(map[string]string)
		}
		opts.Scope[col] = value
	}
	return opts
}

// hasNewerThan reports whether any row in the page carries a date beyond the
// watermark on the table's coverage column.
func hasNewerThan(spec catalog.TableSpec, page domain.Rows, watermark string) bool {
	idx := -1
	for i, f := range page.Fields {
		if spec.MappedField(f) == spec.DateColumn {
			idx = i
			break
		}
	}
	if idx < 0 {
		return true
	}
	for _, row := range page.Items {
		if idx >= len(row) {
			continue
		}
		if d := compactDate(row[idx]); len(d) == len(dateFormat) && d > watermark {
			return true
		}
	}
	return false
}

func compactDate(v any) string {
	s := fmt.Sprint(v)
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		s = strings.ReplaceAll(s[:10], "-", "")
	}
	return s
}

func validateRange(start, end string) error {
	for _, d := range []string{start, end} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateFormat, d); err != nil {
			return fmt.Errorf("%w: %q is not YYYYMMDD", domain.ErrInvalidRange, d)
		}
	}
	if start != "" && end != "" && start > end {
		return fmt.Errorf("%w: start %s after end %s", domain.ErrInvalidRange, start, end)
	}
	return nil
}
