package duckdb

import (
	"context"
	"fmt"

	"marketsync/internal/domain"
)

// Calendar reads the synchronized trading calendar. It serves the planner's
// trading-day expansion, so the trade_cal table must be synced before any
// trading-day table can be planned.
type Calendar struct {
	store *Store
}

func NewCalendar(store *Store) *Calendar {
	return &Calendar{store: store}
}

// TradeDates lists the exchange-open dates in [start, end], ascending.
// Returns an empty slice when the calendar has no rows for the window.
func (c *Calendar) TradeDates(ctx context.Context, exchange, start, end string) ([]string, error) {
	exists, err := c.store.TableExists(ctx, "trade_cal")
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var dates []string
	err = c.store.db.SelectContext(ctx, &dates, `
		SELECT cal_date FROM trade_cal
		WHERE cal_date >= ? AND cal_date <= ? AND exchange = ? AND is_open = '1'
		ORDER BY cal_date`,
		start, end, exchange)
	if err != nil {
		return nil, domain.StorageErr(fmt.Errorf("read trading calendar: %w", err))
	}
	return dates, nil
}
