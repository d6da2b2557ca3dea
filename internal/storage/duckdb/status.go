package duckdb

import (
	"context"
	"fmt"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
)

// DayCount is the stored row count for one date.
type DayCount struct {
	Date  string `db:"date"`
	Count int64  `db:"count"`
}

// DailyCounts returns per-day row counts for the table's date column within
// [start, end]. Days with zero rows are simply absent; gap diagnosis is the
// caller's job against the trading calendar.
func (s *Store) DailyCounts(ctx context.Context, spec catalog.TableSpec, start, end string) ([]DayCount, error) {
	query := fmt.Sprintf(`
		SELECT %q AS date, COUNT(*) AS count
		FROM %q
		WHERE %q >= ? AND %q <= ?
		GROUP BY %q
		ORDER BY %q`,
		spec.DateColumn, spec.Name,
		spec.DateColumn, spec.DateColumn,
		spec.DateColumn, spec.DateColumn)

	var counts []DayCount
	if err := s.db.SelectContext(ctx, &counts, query, start, end); err != nil {
		return nil, domain.StorageErr(fmt.Errorf("daily counts for %s: %w", spec.Name, err))
	}
	return counts, nil
}

// GapDays returns trading days in [start, end] with zero stored rows.
func GapDays(tradingDays []string, counts []DayCount) []string {
	have := make(map[string]bool, len(counts))
	for _, c := range counts {
		have[c.Date] = true
	}
	var gaps []string
	for _, d := range tradingDays {
		if !have[d] {
			gaps = append(gaps, d)
		}
	}
	return gaps
}
