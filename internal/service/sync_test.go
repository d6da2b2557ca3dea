package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
	"marketsync/internal/service/mocks"
)

type SyncServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	fetcher  *mocks.MockFetcher
	writer   *mocks.MockWriter
	meta     *mocks.MockMetadataStore
	schema   *mocks.MockSchemaManager
	calendar *mocks.MockCalendar

	logger *slog.Logger
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.fetcher = mocks.NewMockFetcher(s.ctrl)
	s.writer = mocks.NewMockWriter(s.ctrl)
	s.meta = mocks.NewMockMetadataStore(s.ctrl)
	s.schema = mocks.NewMockSchemaManager(s.ctrl)
	s.calendar = mocks.NewMockCalendar(s.ctrl)

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func (s *SyncServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func (s *SyncServiceTestSuite) newService(tables ...catalog.TableSpec) *SyncService {
	cat := catalog.Category{Name: "stock", Tables: tables}
	planner := NewPlanner(s.calendar, s.logger)
	return NewSyncService(cat, s.fetcher, s.writer, s.meta, s.schema, planner, s.logger)
}

func dailyTestSpec(name string) catalog.TableSpec {
	return catalog.TableSpec{
		Name: name,
		Columns: []catalog.ColumnSpec{
			{Name: "ts_code", Type: "VARCHAR"},
			{Name: "trade_date", Type: "VARCHAR"},
			{Name: "close", Type: "DOUBLE"},
		},
		PrimaryKey:   []string{"ts_code", "trade_date"},
		DateColumn:   "trade_date",
		DateColumns:  []string{"trade_date"},
		DateKind:     catalog.DateTrading,
		Strategy:     catalog.StrategySingle,
		EarliestDate: "20200101",
		PageSize:     100,
	}
}

func pagingTestSpec() catalog.TableSpec {
	return catalog.TableSpec{
		Name: "stock_basic",
		Columns: []catalog.ColumnSpec{
			{Name: "ts_code", Type: "VARCHAR"},
			{Name: "name", Type: "VARCHAR"},
			{Name: "list_date", Type: "VARCHAR"},
		},
		PrimaryKey:   []string{"ts_code"},
		DateColumn:   "list_date",
		DateColumns:  []string{"list_date"},
		DateKind:     catalog.DateCalendar,
		Strategy:     catalog.StrategyFullPaging,
		EarliestDate: "19901219",
		PageSize:     100,
	}
}

func dailyRows(date string, codes ...string) domain.Rows {
	rows := domain.Rows{Fields: []string{"ts_code", "trade_date", "close"}}
	for _, c := range codes {
		rows.Items = append(rows.Items, []any{c, date, 10.0})
	}
	return rows
}

func (s *SyncServiceTestSuite) TestSync_PartialFailureContinues() {
	ctx := context.Background()
	spec := dailyTestSpec("daily")
	svc := s.newService(spec)

	s.meta.EXPECT().EnsureMetadataTable(ctx).Return(nil)
	s.schema.EXPECT().EnsureTable(ctx, spec).Return(nil)
	s.meta.EXPECT().Get(ctx, "daily").Return(domain.Coverage{Table: "daily"}, nil)
	s.calendar.EXPECT().TradeDates(ctx, "SSE", "20240101", "20240103").
		Return([]string{"20240101", "20240102", "20240103"}, nil)

	fields := spec.APIFields()
	s.fetcher.EXPECT().Fetch(ctx, "daily", fields, map[string]string{"trade_date": "20240101"}, 100).
		Return(dailyRows("20240101", "000001.SZ", "600000.SH"), nil)
	s.fetcher.EXPECT().Fetch(ctx, "daily", fields, map[string]string{"trade_date": "20240102"}, 100).
		Return(domain.Rows{}, errors.New("upstream error"))
	s.fetcher.EXPECT().Fetch(ctx, "daily", fields, map[string]string{"trade_date": "20240103"}, 100).
		Return(dailyRows("20240103", "000001.SZ"), nil)

	s.writer.EXPECT().
		Apply(ctx, spec, gomock.Any(), domain.ModeInsertNew, domain.ApplyOptions{StartDate: "20240101", EndDate: "20240101"}).
		Return(domain.WriteResult{Written: 2}, nil)
	s.writer.EXPECT().
		Apply(ctx, spec, gomock.Any(), domain.ModeInsertNew, domain.ApplyOptions{StartDate: "20240103", EndDate: "20240103"}).
		Return(domain.WriteResult{Written: 1}, nil)

	report, err := svc.Sync(ctx, SyncRequest{Start: "20240101", End: "20240103"})

	s.NoError(err)
	s.Require().Len(report.Tables, 1)
	stats := report.Tables[0]
	s.Equal(3, stats.UnitsPlanned)
	s.Equal(2, stats.UnitsFetched)
	s.Equal(1, stats.Failed)
	s.Equal(3, stats.Written)
	s.False(stats.Aborted)
	s.False(report.OK())

	written, _, failed := report.Totals()
	s.Equal(3, written)
	s.Equal(1, failed)
}

func (s *SyncServiceTestSuite) TestSync_StorageErrorAbortsTableNotRun() {
	ctx := context.Background()
	broken := dailyTestSpec("daily")
	healthy := dailyTestSpec("adj_factor")
	svc := s.newService(broken, healthy)

	s.meta.EXPECT().EnsureMetadataTable(ctx).Return(nil)
	s.schema.EXPECT().EnsureTable(ctx, broken).Return(nil)
	s.schema.EXPECT().EnsureTable(ctx, healthy).Return(nil)
	s.meta.EXPECT().Get(ctx, "daily").Return(domain.Coverage{Table: "daily"}, nil)
	s.meta.EXPECT().Get(ctx, "adj_factor").Return(domain.Coverage{Table: "adj_factor"}, nil)
	s.calendar.EXPECT().TradeDates(ctx, "SSE", "20240101", "20240102").
		Return([]string{"20240101", "20240102"}, nil).Times(2)

	// First table dies on its first write; its second unit must never run.
	s.fetcher.EXPECT().Fetch(ctx, "daily", gomock.Any(), map[string]string{"trade_date": "20240101"}, 100).
		Return(dailyRows("20240101", "000001.SZ"), nil)
	s.writer.EXPECT().Apply(ctx, broken, gomock.Any(), domain.ModeInsertNew, gomock.Any()).
		Return(domain.WriteResult{}, domain.StorageErr(errors.New("disk full")))

	s.fetcher.EXPECT().Fetch(ctx, "adj_factor", gomock.Any(), map[string]string{"trade_date": "20240101"}, 100).
		Return(dailyRows("20240101", "000001.SZ"), nil)
	s.fetcher.EXPECT().Fetch(ctx, "adj_factor", gomock.Any(), map[string]string{"trade_date": "20240102"}, 100).
		Return(dailyRows("20240102", "000001.SZ"), nil)
	s.writer.EXPECT().Apply(ctx, healthy, gomock.Any(), domain.ModeInsertNew, gomock.Any()).
		Return(domain.WriteResult{Written: 1}, nil).Times(2)

	report, err := svc.Sync(ctx, SyncRequest{Start: "20240101", End: "20240102"})

	s.NoError(err)
	s.Require().Len(report.Tables, 2)
	s.True(report.Tables[0].Aborted)
	s.ErrorIs(report.Tables[0].Err, domain.ErrStorage)
	s.False(report.Tables[1].Aborted)
	s.Equal(2, report.Tables[1].Written)
	s.False(report.OK())
}

func (s *SyncServiceTestSuite) TestSync_UnknownTableFailsBeforeAnyWork() {
	ctx := context.Background()
	svc := s.newService(dailyTestSpec("daily"))

	report, err := svc.Sync(ctx, SyncRequest{Tables: []string{"no_such_table"}})

	s.ErrorIs(err, domain.ErrUnknownTable)
	s.Nil(report)
}

func (s *SyncServiceTestSuite) TestSync_MalformedRangeFailsBeforeAnyWork() {
	ctx := context.Background()
	svc := s.newService(dailyTestSpec("daily"))

	report, err := svc.Sync(ctx, SyncRequest{Start: "2024-01-01", End: "20240103"})

	s.ErrorIs(err, domain.ErrInvalidRange)
	s.Nil(report)

	report, err = svc.Sync(ctx, SyncRequest{Start: "20240105", End: "20240101"})

	s.ErrorIs(err, domain.ErrInvalidRange)
	s.Nil(report)
}

func (s *SyncServiceTestSuite) TestSync_FullPagingWritesPageWiseAndStopsAtWatermark() {
	ctx := context.Background()
	spec := pagingTestSpec()
	svc := s.newService(spec)

	s.meta.EXPECT().EnsureMetadataTable(ctx).Return(nil)
	s.schema.EXPECT().EnsureTable(ctx, spec).Return(nil)
	s.meta.EXPECT().Get(ctx, "stock_basic").Return(domain.Coverage{Table: "stock_basic", MaxDate: "20240101"}, nil)

	newer := domain.Rows{
		Fields: []string{"ts_code", "name", "list_date"},
		Items:  [][]any{{"301000.SZ", "new co", "20240215"}},
	}
	older := domain.Rows{
		Fields: []string{"ts_code", "name", "list_date"},
		Items:  [][]any{{"600000.SH", "old co", "19991110"}},
	}

	s.fetcher.EXPECT().
		FetchPages(ctx, "stock_basic", spec.APIFields(), map[string]string{}, 100, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []string, _ map[string]string, _ int, fn func(domain.Rows) (bool, error)) (int, error) {
			stop, err := fn(newer)
			s.NoError(err)
			s.False(stop)

			stop, err = fn(older)
			s.NoError(err)
			s.True(stop)
			return 2, nil
		})

	s.writer.EXPECT().Apply(ctx, spec, gomock.Any(), domain.ModeInsertNew, domain.ApplyOptions{}).
		Return(domain.WriteResult{Written: 1}, nil).Times(2)

	report, err := svc.Sync(ctx, SyncRequest{})

	s.NoError(err)
	s.Require().Len(report.Tables, 1)
	s.Equal(2, report.Tables[0].Written)
	s.Equal(1, report.Tables[0].UnitsFetched)
	s.True(report.OK())
}

func (s *SyncServiceTestSuite) TestSync_EmptyUnitIsNotAnError() {
	ctx := context.Background()
	spec := dailyTestSpec("daily")
	svc := s.newService(spec)

	s.meta.EXPECT().EnsureMetadataTable(ctx).Return(nil)
	s.schema.EXPECT().EnsureTable(ctx, spec).Return(nil)
	s.meta.EXPECT().Get(ctx, "daily").Return(domain.Coverage{Table: "daily"}, nil)
	s.calendar.EXPECT().TradeDates(ctx, "SSE", "20240101", "20240101").
		Return([]string{"20240101"}, nil)
	s.fetcher.EXPECT().Fetch(ctx, "daily", gomock.Any(), gomock.Any(), 100).
		Return(domain.Rows{}, nil)

	report, err := svc.Sync(ctx, SyncRequest{Start: "20240101", End: "20240101"})

	s.NoError(err)
	s.Equal(0, report.Tables[0].Written)
	s.Equal(0, report.Tables[0].Failed)
	s.Equal(1, report.Tables[0].UnitsFetched)
	s.True(report.OK())
}

func calendarTestSpec() catalog.TableSpec {
	return catalog.TableSpec{
		Name: "trade_cal",
		Columns: []catalog.ColumnSpec{
			{Name: "exchange", Type: "VARCHAR"},
			{Name: "cal_date", Type: "VARCHAR"},
			{Name: "is_open", Type: "VARCHAR"},
		},
		PrimaryKey:     []string{"exchange", "cal_date"},
		DateColumn:     "cal_date",
		DateColumns:    []string{"cal_date"},
		DateKind:       catalog.DateCalendar,
		Strategy:       catalog.StrategyRange,
		EarliestDate:   "19901219",
		PageSize:       1000,
		RequiredParams: map[string][]string{"exchange": {"SSE", "SZSE"}},
	}
}

func (s *SyncServiceTestSuite) TestSync_ReplaceScopesDeleteToGridColumn() {
	ctx := context.Background()
	spec := calendarTestSpec()
	svc := s.newService(spec)

	s.meta.EXPECT().EnsureMetadataTable(ctx).Return(nil)
	s.schema.EXPECT().EnsureTable(ctx, spec).Return(nil)
	s.meta.EXPECT().Get(ctx, "trade_cal").Return(domain.Coverage{Table: "trade_cal"}, nil)

	calRows := func(exchange string) domain.Rows {
		return domain.Rows{
			Fields: []string{"exchange", "cal_date", "is_open"},
			Items:  [][]any{{exchange, "20240102", "1"}},
		}
	}
	s.fetcher.EXPECT().
		Fetch(ctx, "trade_cal", spec.APIFields(),
			map[string]string{"exchange": "SSE", "start_date": "20240101", "end_date": "20240102"}, 1000).
		Return(calRows("SSE"), nil)
	s.fetcher.EXPECT().
		Fetch(ctx, "trade_cal", spec.APIFields(),
			map[string]string{"exchange": "SZSE", "start_date": "20240101", "end_date": "20240102"}, 1000).
		Return(calRows("SZSE"), nil)

	// each grid unit's replace window carries its own exchange scope, so
	// the second unit's delete cannot touch the first unit's rows
	s.writer.EXPECT().
		Apply(ctx, spec, gomock.Any(), domain.ModeReplace, domain.ApplyOptions{
			StartDate: "20240101", EndDate: "20240102",
			Scope: map[string]string{"exchange": "SSE"},
		}).
		Return(domain.WriteResult{Written: 1}, nil)
	s.writer.EXPECT().
		Apply(ctx, spec, gomock.Any(), domain.ModeReplace, domain.ApplyOptions{
			StartDate: "20240101", EndDate: "20240102",
			Scope: map[string]string{"exchange": "SZSE"},
		}).
		Return(domain.WriteResult{Written: 1}, nil)

	report, err := svc.Sync(ctx, SyncRequest{
		Start: "20240101",
		End:   "20240102",
		Mode:  domain.ModeReplace,
	})

	s.NoError(err)
	s.Require().Len(report.Tables, 1)
	s.Equal(2, report.Tables[0].UnitsFetched)
	s.Equal(2, report.Tables[0].Written)
	s.True(report.OK())
}
