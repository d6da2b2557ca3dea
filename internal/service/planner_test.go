package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
	"marketsync/internal/service/mocks"
)

type PlannerTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	calendar *mocks.MockCalendar
	planner  *Planner
}

func (s *PlannerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.calendar = mocks.NewMockCalendar(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.planner = NewPlanner(s.calendar, logger)
	s.planner.now = func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}
}

func (s *PlannerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestPlannerTestSuite(t *testing.T) {
	suite.Run(t, new(PlannerTestSuite))
}

func (s *PlannerTestSuite) TestSingleExpandsTradingDaysOnly() {
	ctx := context.Background()
	spec := dailyTestSpec("daily")

	// 20240106/20240107 are a weekend; the calendar omits them.
	s.calendar.EXPECT().TradeDates(ctx, "SSE", "20240104", "20240108").
		Return([]string{"20240104", "20240105", "20240108"}, nil)

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{Start: "20240104", End: "20240108"})

	s.NoError(err)
	s.Require().Len(units, 3)
	for i, date := range []string{"20240104", "20240105", "20240108"} {
		s.Equal(domain.UnitDay, units[i].Kind)
		s.Equal(date, units[i].TradeDate)
		s.Equal(date, units[i].Params["trade_date"])
		s.Equal(100, units[i].PageSize)
	}
}

func (s *PlannerTestSuite) TestSingleCalendarDaysIterateEveryDate() {
	ctx := context.Background()
	spec := dailyTestSpec("shibor_like")
	spec.DateKind = catalog.DateCalendar
	spec.DateParam = "date"

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{Start: "20240228", End: "20240302"})

	s.NoError(err)
	s.Require().Len(units, 4) // leap day included
	s.Equal("20240229", units[1].TradeDate)
	s.Equal("20240229", units[1].Params["date"])
}

func (s *PlannerTestSuite) TestRangeProducesSingleUnit() {
	ctx := context.Background()
	spec := dailyTestSpec("margin")
	spec.Strategy = catalog.StrategyRange

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{Start: "20240101", End: "20240131"})

	s.NoError(err)
	s.Require().Len(units, 1)
	s.Equal(domain.UnitRange, units[0].Kind)
	s.Equal("20240101", units[0].Params["start_date"])
	s.Equal("20240131", units[0].Params["end_date"])
}

func (s *PlannerTestSuite) TestClosedTableClampsEnd() {
	ctx := context.Background()
	spec := dailyTestSpec("old_index")
	spec.Strategy = catalog.StrategyRange
	spec.LatestDate = "20201231"

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{Start: "20200101", End: "20240601"})

	s.NoError(err)
	s.Require().Len(units, 1)
	s.Equal("20201231", units[0].EndDate)
}

func (s *PlannerTestSuite) TestEmptyWindowIsSkippedNotFailed() {
	ctx := context.Background()
	spec := dailyTestSpec("old_index")
	spec.Strategy = catalog.StrategyRange
	spec.LatestDate = "20201231"

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{Start: "20230101"})

	s.NoError(err)
	s.Empty(units)
}

func (s *PlannerTestSuite) TestDefaultRangeRunsEarliestThroughToday() {
	ctx := context.Background()
	spec := dailyTestSpec("margin")
	spec.Strategy = catalog.StrategyRange
	spec.EarliestDate = "20100331"

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{})

	s.NoError(err)
	s.Require().Len(units, 1)
	s.Equal("20100331", units[0].StartDate)
	s.Equal("20240615", units[0].EndDate)
}

func (s *PlannerTestSuite) TestMalformedDateRejected() {
	ctx := context.Background()
	spec := dailyTestSpec("margin")
	spec.Strategy = catalog.StrategyRange

	_, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{Start: "01/02/2024"})

	s.ErrorIs(err, domain.ErrInvalidRange)
}

func (s *PlannerTestSuite) TestGridExpansionIsDateMajor() {
	ctx := context.Background()
	spec := dailyTestSpec("trade_cal_like")
	spec.DateKind = catalog.DateCalendar
	spec.RequiredParams = map[string][]string{"exchange": {"SSE", "SZSE"}}
	spec.FixedParams = map[string]string{"fields_extra": "1"}

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{Start: "20240101", End: "20240102"})

	s.NoError(err)
	s.Require().Len(units, 4)
	s.Equal("SSE", units[0].Params["exchange"])
	s.Equal("SZSE", units[1].Params["exchange"])
	s.Equal("20240101", units[1].TradeDate)
	s.Equal("SSE", units[2].Params["exchange"])
	s.Equal("20240102", units[2].TradeDate)
	s.Equal("1", units[3].Params["fields_extra"])
}

func (s *PlannerTestSuite) TestFullPagingCarriesWatermark() {
	ctx := context.Background()
	spec := pagingTestSpec()

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{Table: "stock_basic", MaxDate: "20240110"}, PlanRequest{})

	s.NoError(err)
	s.Require().Len(units, 1)
	s.Equal(domain.UnitPaging, units[0].Kind)
	s.Equal("20240110", units[0].Watermark)
}

func (s *PlannerTestSuite) TestExplicitCodesNarrowDeclaredGrid() {
	ctx := context.Background()
	spec := dailyTestSpec("index_daily")
	spec.Strategy = catalog.StrategyRange
	spec.RequiredParams = map[string][]string{
		"ts_code": {"000001.SH", "000300.SH", "399001.SZ"},
	}

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{
		Start:   "20240101",
		End:     "20240131",
		TSCodes: []string{"000300.SH", "999999.XX"},
	})

	s.NoError(err)
	s.Require().Len(units, 1)
	s.Equal("000300.SH", units[0].Params["ts_code"])
}

func (s *PlannerTestSuite) TestExplicitCodesIntroduceAxisWhenUndeclared() {
	ctx := context.Background()
	spec := dailyTestSpec("fund_daily")
	spec.Strategy = catalog.StrategyRange

	units, err := s.planner.Plan(ctx, spec, domain.Coverage{}, PlanRequest{
		Start:   "20240101",
		End:     "20240131",
		TSCodes: []string{"510050.SH", "159915.SZ"},
	})

	s.NoError(err)
	s.Require().Len(units, 2)
	s.Equal("510050.SH", units[0].Params["ts_code"])
	s.Equal("159915.SZ", units[1].Params["ts_code"])
}
