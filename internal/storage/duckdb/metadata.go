package duckdb

import (
	"context"
	"fmt"
	"time"

	"marketsync/internal/domain"
)

const metadataTable = "_sync_metadata"

// MetadataStore tracks per-table coverage: min/max covered date, row count,
// and last sync time. Read before planning, written as the last step of a
// successful apply, inside the same transaction as the data write.
type MetadataStore struct {
	store *Store
}

func NewMetadataStore(store *Store) *MetadataStore {
	return &MetadataStore{store: store}
}

// EnsureMetadataTable creates the coverage table if absent.
func (m *MetadataStore) EnsureMetadataTable(ctx context.Context) error {
	_, err := m.store.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			table_name VARCHAR PRIMARY KEY,
			min_date VARCHAR,
			max_date VARCHAR,
			row_count BIGINT,
			last_synced TIMESTAMP
		)`, metadataTable))
	if err != nil {
		return domain.StorageErr(fmt.Errorf("create metadata table: %w", err))
	}
	return nil
}

// Get returns the coverage row for table; a never-synced table yields the
// zero Coverage, not an error.
func (m *MetadataStore) Get(ctx context.Context, table string) (domain.Coverage, error) {
	var cov domain.Coverage
	query := fmt.Sprintf(`
		SELECT table_name, min_date, max_date, row_count, last_synced
		FROM %q
		WHERE table_name = ?`, metadataTable)

	err := m.store.db.GetContext(ctx, &cov, query, table)
	if isNoRows(err) {
		return domain.Coverage{Table: table}, nil
	}
	if err != nil {
		return domain.Coverage{}, domain.StorageErr(fmt.Errorf("read coverage for %s: %w", table, err))
	}
	return cov, nil
}

// All returns coverage rows for every managed table, ordered by name.
func (m *MetadataStore) All(ctx context.Context) ([]domain.Coverage, error) {
	var covs []domain.Coverage
	query := fmt.Sprintf(`
		SELECT table_name, min_date, max_date, row_count, last_synced
		FROM %q
		ORDER BY table_name`, metadataTable)

	if err := m.store.db.SelectContext(ctx, &covs, query); err != nil {
		return nil, domain.StorageErr(fmt.Errorf("read coverage: %w", err))
	}
	return covs, nil
}

// Put upserts the coverage row. It honors a transaction bound to ctx so the
// metadata write commits atomically with the data write.
func (m *MetadataStore) Put(ctx context.Context, cov domain.Coverage) error {
	if cov.LastSynced.IsZero() {
		cov.LastSynced = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %q (table_name, min_date, max_date, row_count, last_synced)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (table_name) DO UPDATE SET
			min_date = EXCLUDED.min_date,
			max_date = EXCLUDED.max_date,
			row_count = EXCLUDED.row_count,
			last_synced = EXCLUDED.last_synced`, metadataTable)

	ex := GetExecutor(ctx, m.store.db)
	_, err := ex.ExecContext(ctx, query,
		cov.Table, cov.MinDate, cov.MaxDate, cov.RowCount, cov.LastSynced)
	if err != nil {
		return domain.StorageErr(fmt.Errorf("write coverage for %s: %w", cov.Table, err))
	}
	return nil
}
