package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
)

// insertChunkSize bounds placeholder counts per statement.
const insertChunkSize = 500

// Writer reconciles fetched batches against stored rows. All statements of
// one Apply run in a single transaction, with the coverage update last, so
// a crash mid-unit under-reports coverage instead of over-reporting it.
type Writer struct {
	store  *Store
	meta   *MetadataStore
	tx     *TransactionManager
	logger *slog.Logger
}

func NewWriter(store *Store, meta *MetadataStore, logger *slog.Logger) *Writer {
	return &Writer{
		store:  store,
		meta:   meta,
		tx:     NewTransactionManager(store.db),
		logger: logger.With("component", "writer"),
	}
}

// Apply normalizes batch and writes it under the given storage mode,
// then updates the table's coverage metadata in the same transaction.
func (w *Writer) Apply(
	ctx context.Context,
	spec catalog.TableSpec,
	batch domain.RecordBatch,
	mode domain.StorageMode,
	opts domain.ApplyOptions,
) (domain.WriteResult, error) {
	if batch.Empty() {
		return domain.WriteResult{}, nil
	}

	nb, err := normalizeBatch(spec, batch, w.logger)
	if err != nil {
		return domain.WriteResult{}, err
	}
	if len(nb.Rows) == 0 {
		return domain.WriteResult{Skipped: nb.Skipped}, nil
	}

	prev, err := w.meta.Get(ctx, spec.Name)
	if err != nil {
		return domain.WriteResult{}, err
	}

	res := domain.WriteResult{Skipped: nb.Skipped}

	err = w.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		switch mode {
		case domain.ModeReplace:
			if err := w.deleteRange(txCtx, spec, opts); err != nil {
				return err
			}
			if err := w.insertRows(txCtx, spec, nb.Columns, nb.Rows); err != nil {
				return err
			}
			res.Written = len(nb.Rows)
			cov, err := w.recomputeCoverage(txCtx, spec)
			if err != nil {
				return err
			}
			return w.meta.Put(txCtx, cov)

		case domain.ModeDedupInsert:
			deleted, err := w.deleteColliding(txCtx, spec, nb)
			if err != nil {
				return err
			}
			if err := w.insertRows(txCtx, spec, nb.Columns, nb.Rows); err != nil {
				return err
			}
			res.Written = len(nb.Rows)
			return w.meta.Put(txCtx, foldCoverage(prev, nb, int64(len(nb.Rows))-deleted))

		default: // insert-new
			existing, err := w.existingKeys(txCtx, spec, nb)
			if err != nil {
				return err
			}

			var fresh [][]any
			for _, row := range nb.Rows {
				if existing[nb.pkKey(row)] {
					res.Skipped++
					continue
				}
				fresh = append(fresh, row)
			}
			if len(fresh) == 0 {
				return nil
			}
			if err := w.insertRows(txCtx, spec, nb.Columns, fresh); err != nil {
				return err
			}
			res.Written = len(fresh)
			return w.meta.Put(txCtx, foldCoverage(prev, nb, int64(len(fresh))))
		}
	})
	if err != nil {
		return domain.WriteResult{Skipped: nb.Skipped}, err
	}

	w.logger.Debug("batch applied",
		"table", spec.Name,
		"mode", mode,
		"written", res.Written,
		"skipped", res.Skipped,
	)
	return res, nil
}

// existingKeys loads the stored primary keys overlapping the batch's date
// window. The scan is bounded to that window, never the whole table.
func (w *Writer) existingKeys(ctx context.Context, spec catalog.TableSpec, nb normalizedBatch) (map[string]bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %q WHERE %q >= ? AND %q <= ?`,
		quotedList(spec.PrimaryKey), spec.Name, spec.DateColumn, spec.DateColumn)

	ex := GetExecutor(ctx, w.store.db)
	rows, err := ex.QueryxContext(ctx, query, nb.MinDate, nb.MaxDate)
	if err != nil {
		return nil, domain.StorageErr(fmt.Errorf("scan existing keys for %s: %w", spec.Name, err))
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, domain.StorageErr(err)
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = fmt.Sprint(v)
		}
		existing[strings.Join(parts, "\x1f")] = true
	}
	return existing, rows.Err()
}

// deleteColliding removes stored rows sharing a primary key with the batch
// and returns how many were deleted.
func (w *Writer) deleteColliding(ctx context.Context, spec catalog.TableSpec, nb normalizedBatch) (int64, error) {
	ex := GetExecutor(ctx, w.store.db)

	rowPredicate := make([]string, len(spec.PrimaryKey))
	for i, pk := range spec.PrimaryKey {
		rowPredicate[i] = fmt.Sprintf("%q = ?", pk)
	}
	onePredicate := "(" + strings.Join(rowPredicate, " AND ") + ")"

	var deleted int64
	for start := 0; start < len(nb.Rows); start += insertChunkSize {
		end := min(start+insertChunkSize, len(nb.Rows))
		chunk := nb.Rows[start:end]

		predicates := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(spec.PrimaryKey))
		for i, row := range chunk {
			predicates[i] = onePredicate
			for _, idx := range nb.pkIdx {
				args = append(args, row[idx])
			}
		}

		query := fmt.Sprintf(`DELETE FROM %q WHERE %s`, spec.Name, strings.Join(predicates, " OR "))
		result, err := ex.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, domain.StorageErr(fmt.Errorf("delete colliding keys in %s: %w", spec.Name, err))
		}
		if n, err := result.RowsAffected(); err == nil {
			deleted += n
		}
	}
	return deleted, nil
}

// deleteRange clears the replace window: the given date bounds, optionally
// scoped to one instrument code and to the unit's grid columns. Empty bounds
// mean a snapshot replace and clear the (scoped) table. Scope predicates are
// what keeps one grid unit's replace from deleting a sibling's rows.
func (w *Writer) deleteRange(ctx context.Context, spec catalog.TableSpec, opts domain.ApplyOptions) error {
	ex := GetExecutor(ctx, w.store.db)

	var (
		predicates []string
		args       []any
	)
	if opts.StartDate != "" || opts.EndDate != "" {
		predicates = append(predicates, fmt.Sprintf(`%q >= ? AND %q <= ?`,
			spec.DateColumn, spec.DateColumn))
		args = append(args, opts.StartDate, opts.EndDate)
	} else {
		w.logger.Info("snapshot replace, clearing table", "table", spec.Name)
	}
	if opts.TSCode != "" {
		predicates = append(predicates, `"ts_code" = ?`)
		args = append(args, opts.TSCode)
	}
	for _, col := range sortedKeys(opts.Scope) {
		predicates = append(predicates, fmt.Sprintf(`%q = ?`, col))
		args = append(args, opts.Scope[col])
	}

	query := fmt.Sprintf(`DELETE FROM %q`, spec.Name)
	if len(predicates) > 0 {
		query += " WHERE " + strings.Join(predicates, " AND ")
	}

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return domain.StorageErr(fmt.Errorf("delete replace window in %s: %w", spec.Name, err))
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// insertRows bulk-inserts in chunks via multi-row VALUES statements.
func (w *Writer) insertRows(ctx context.Context, spec catalog.TableSpec, columns []string, rows [][]any) error {
	ex := GetExecutor(ctx, w.store.db)

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	prefix := fmt.Sprintf("INSERT INTO %q (%s) VALUES ", spec.Name, quotedList(columns))

	for start := 0; start < len(rows); start += insertChunkSize {
		end := min(start+insertChunkSize, len(rows))
		chunk := rows[start:end]

		var sb strings.Builder
		sb.WriteString(prefix)
		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(placeholders)
			args = append(args, row...)
		}

		if _, err := ex.ExecContext(ctx, sb.String(), args...); err != nil {
			return domain.StorageErr(fmt.Errorf("insert into %s: %w", spec.Name, err))
		}
	}
	return nil
}

// recomputeCoverage rescans the table for min/max/count. Used after replace
// writes, where deletions invalidate incremental coverage arithmetic.
func (w *Writer) recomputeCoverage(ctx context.Context, spec catalog.TableSpec) (domain.Coverage, error) {
	query := fmt.Sprintf(`SELECT MIN(%q), MAX(%q), COUNT(*) FROM %q`,
		spec.DateColumn, spec.DateColumn, spec.Name)

	ex := GetExecutor(ctx, w.store.db)
	var minDate, maxDate sql.NullString
	var count int64
	if err := ex.QueryRowxContext(ctx, query).Scan(&minDate, &maxDate, &count); err != nil {
		return domain.Coverage{}, domain.StorageErr(fmt.Errorf("recompute coverage for %s: %w", spec.Name, err))
	}

	return domain.Coverage{
		Table:    spec.Name,
		MinDate:  minDate.String,
		MaxDate:  maxDate.String,
		RowCount: count,
	}, nil
}

// foldCoverage extends previous coverage with the batch's date bounds and
// adjusts the row count by delta. Max date never decreases.
func foldCoverage(prev domain.Coverage, nb normalizedBatch, delta int64) domain.Coverage {
	cov := prev
	if cov.MinDate == "" || nb.MinDate < cov.MinDate {
		cov.MinDate = nb.MinDate
	}
	if nb.MaxDate > cov.MaxDate {
		cov.MaxDate = nb.MaxDate
	}
	cov.RowCount += delta
	cov.LastSynced = time.Time{} // stamped on write
	return cov
}

func quotedList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
}
