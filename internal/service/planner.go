package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
)

const dateFormat = "20060102"

// defaultDateParam is the API parameter carrying the day for single-day units.
const defaultDateParam = "trade_date"

// PlanRequest narrows a plan to an explicit window, exchange, or instrument set.
// Empty fields fall back to the table spec's defaults.
type PlanRequest struct {
	Start    string
	End      string
	Exchange string
	TSCodes  []string
}

// Planner turns a table spec plus current coverage into an ordered sequence
// of fetch units.
type Planner struct {
	calendar Calendar
	logger   *slog.Logger
	now      func() time.Time
}

func NewPlanner(calendar Calendar, logger *slog.Logger) *Planner {
	return &Planner{
		calendar: calendar,
		logger:   logger.With("component", "planner"),
		now:      time.Now,
	}
}

// Plan computes the fetch units for one table. Units come back date-major,
// grid-minor, ascending; an empty plan means the window needs no work.
func (p *Planner) Plan(ctx context.Context, spec catalog.TableSpec, cov domain.Coverage, req PlanRequest) ([]domain.FetchUnit, error) {
	grid := p.paramGrid(spec, req.TSCodes)

	if spec.Strategy == catalog.StrategyFullPaging {
		units := make([]domain.FetchUnit, 0, len(grid))
		for _, combo := range grid {
			units = append(units, domain.FetchUnit{
				Table:      spec.Name,
				Kind:       domain.UnitPaging,
				Params:     combo,
				GridParams: combo,
				Watermark:  cov.MaxDate,
				PageSize:   spec.PageSize,
			})
		}
		return units, nil
	}

	start, end, err := p.resolveRange(spec, req)
	if err != nil {
		return nil, err
	}
	if start > end {
		p.logger.Info("nothing to plan", "table", spec.Name, "start", start, "end", end)
		return nil, nil
	}

	dateParam := spec.DateParam
	if dateParam == "" {
		dateParam = defaultDateParam
	}

	switch spec.Strategy {
	case catalog.StrategyRange:
		units := make([]domain.FetchUnit, 0, len(grid))
		for _, combo := range grid {
			params := cloneParams(combo)
			params["start_date"] = start
			params["end_date"] = end
			units = append(units, domain.FetchUnit{
				Table:      spec.Name,
				Kind:       domain.UnitRange,
				StartDate:  start,
				EndDate:    end,
				Params:     params,
				GridParams: combo,
				PageSize:   spec.PageSize,
			})
		}
		return units, nil

	case catalog.StrategySingle:
		days, err := p.expandDays(ctx, spec, req.Exchange, start, end)
		if err != nil {
			return nil, err
		}
		if len(days) == 0 {
			p.logger.Warn("no days in window", "table", spec.Name, "start", start, "end", end)
			return nil, nil
		}
		units := make([]domain.FetchUnit, 0, len(days)*len(grid))
		for _, day := range days {
			for _, combo := range grid {
				params := cloneParams(combo)
				params[dateParam] = day
				units = append(units, domain.FetchUnit{
					Table:      spec.Name,
					Kind:       domain.UnitDay,
					TradeDate:  day,
					Params:     params,
					GridParams: combo,
					PageSize:   spec.PageSize,
				})
			}
		}
		return units, nil
	}

	return nil, fmt.Errorf("table %s: unplannable strategy %q", spec.Name, spec.Strategy)
}

// resolveRange validates the requested window, then defaults and clamps it
// against the table's declared date bounds. Validation comes first: clamping
// a malformed date would silently swallow it, since lexical comparison
// cannot tell "01/02/2024" from a date below the earliest bound.
func (p *Planner) resolveRange(spec catalog.TableSpec, req PlanRequest) (string, string, error) {
	for _, d := range []string{req.Start, req.End} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateFormat, d); err != nil {
			return "", "", fmt.Errorf("%w: %q is not YYYYMMDD", domain.ErrInvalidRange, d)
		}
	}

	today := p.now().Format(dateFormat)

	start := req.Start
	if start == "" || start < spec.EarliestDate {
		start = spec.EarliestDate
	}

	end := req.End
	if end == "" {
		end = spec.LatestDate
		if end == "" {
			end = today
		}
	}
	if spec.LatestDate != "" && end > spec.LatestDate {
		p.logger.Warn("requested end beyond closed table bound, clamping",
			"table", spec.Name, "requested", end, "latest", spec.LatestDate)
		end = spec.LatestDate
	}
	if end > today {
		end = today
	}
	return start, end, nil
}

// expandDays lists the days to fetch: exchange-open days for trading tables,
// every calendar day otherwise.
func (p *Planner) expandDays(ctx context.Context, spec catalog.TableSpec, exchange, start, end string) ([]string, error) {
	if spec.DateKind != catalog.DateTrading {
		return calendarDays(start, end), nil
	}
	if exchange == "" {
		exchange = "SSE"
	}
	days, err := p.calendar.TradeDates(ctx, exchange, start, end)
	if err != nil {
		return nil, fmt.Errorf("trading days for %s: %w", spec.Name, err)
	}
	return days, nil
}

func calendarDays(start, end string) []string {
	from, err1 := time.Parse(dateFormat, start)
	to, err2 := time.Parse(dateFormat, end)
	if err1 != nil || err2 != nil {
		return nil
	}
	var days []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dateFormat))
	}
	return days
}

// paramGrid expands RequiredParams into a cartesian product of parameter
// combinations, FixedParams merged into each. An explicit instrument request
// narrows (or introduces) the ts_code axis.
func (p *Planner) paramGrid(spec catalog.TableSpec, tsCodes []string) []map[string]string {
	required := make(map[string][]string, len(spec.RequiredParams)+1)
	for k, vals := range spec.RequiredParams {
		required[k] = vals
	}
	if len(tsCodes) > 0 {
		if declared, ok := required["ts_code"]; ok {
			required["ts_code"] = intersect(declared, tsCodes)
		} else {
			required["ts_code"] = tsCodes
		}
	}

	keys := make([]string, 0, len(required))
	for k := range required {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []map[string]string{cloneParams(spec.FixedParams)}
	for _, key := range keys {
		next := make([]map[string]string, 0, len(combos)*len(required[key]))
		for _, base := range combos {
			for _, val := range required[key] {
				combo := cloneParams(base)
				combo[key] = val
				next = append(next, combo)
			}
		}
		combos = next
	}
	return combos
}

func intersect(declared, requested []string) []string {
	allowed := make(map[string]bool, len(declared))
	for _, v := range declared {
		allowed[v] = true
	}
	var out []string
	for _, v := range requested {
		if allowed[v] {
			out = append(out, v)
		}
	}
	return out
}

func cloneParams(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}
