package duckdb

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
)

// normalizedBatch is a batch projected onto local columns, date-cleaned,
// and deduplicated within itself (keep-last on primary key).
type normalizedBatch struct {
	Columns []string
	Rows    [][]any
	Skipped int

	MinDate string
	MaxDate string

	dateIdx int
	pkIdx   []int
}

func (nb normalizedBatch) pkKey(row []any) string {
	parts := make([]string, len(nb.pkIdx))
	for i, idx := range nb.pkIdx {
		parts[i] = fmt.Sprint(row[idx])
	}
	return strings.Join(parts, "\x1f")
}

// normalizeBatch maps remote field names onto local columns, normalizes
// date values to YYYYMMDD, drops rows without a usable primary date value
// or with a shape mismatch, and collapses intra-batch primary-key
// duplicates keeping the last occurrence.
func normalizeBatch(spec catalog.TableSpec, batch domain.RecordBatch, logger *slog.Logger) (normalizedBatch, error) {
	// srcIdx[i] is the batch field feeding output column i.
	var columns []string
	var srcIdx []int
	for i, field := range batch.Fields {
		col := spec.MappedField(field)
		if !spec.HasColumn(col) {
			continue
		}
		columns = append(columns, col)
		srcIdx = append(srcIdx, i)
	}

	colIdx := make(map[string]int, len(columns))
	for i, c := range columns {
		colIdx[c] = i
	}

	for _, pk := range spec.PrimaryKey {
		if _, ok := colIdx[pk]; !ok {
			return normalizedBatch{}, fmt.Errorf("%w: table %s: primary key column %s absent from batch",
				domain.ErrSchemaMismatch, spec.Name, pk)
		}
	}
	dateIdx, ok := colIdx[spec.DateColumn]
	if !ok {
		return normalizedBatch{}, fmt.Errorf("%w: table %s: date column %s absent from batch",
			domain.ErrSchemaMismatch, spec.Name, spec.DateColumn)
	}

	dateCols := make(map[int]bool, len(spec.DateColumns)+1)
	dateCols[dateIdx] = true
	for _, dc := range spec.DateColumns {
		if i, ok := colIdx[dc]; ok {
			dateCols[i] = true
		}
	}

	nb := normalizedBatch{
		Columns: columns,
		dateIdx: dateIdx,
		pkIdx:   make([]int, len(spec.PrimaryKey)),
	}
	for i, pk := range spec.PrimaryKey {
		nb.pkIdx[i] = colIdx[pk]
	}

	// keep-last dedup: later rows overwrite earlier ones with the same key
	byKey := make(map[string]int)

	for _, raw := range batch.Rows {
		if len(raw) != len(batch.Fields) {
			nb.Skipped++
			logger.Warn("dropping ragged row",
				"table", spec.Name,
				"got", len(raw),
				"want", len(batch.Fields),
			)
			continue
		}

		row := make([]any, len(columns))
		for i, src := range srcIdx {
			v := raw[src]
			if dateCols[i] {
				v = normalizeDate(v)
			}
			row[i] = v
		}

		if d, _ := row[dateIdx].(string); d == "" {
			nb.Skipped++
			logger.Warn("dropping row without date value",
				"table", spec.Name,
				"date_column", spec.DateColumn,
			)
			continue
		}

		key := nb.pkKey(row)
		if prev, dup := byKey[key]; dup {
			nb.Rows[prev] = row
			continue
		}
		byKey[key] = len(nb.Rows)
		nb.Rows = append(nb.Rows, row)
	}

	for _, row := range nb.Rows {
		d := row[nb.dateIdx].(string)
		if nb.MinDate == "" || d < nb.MinDate {
			nb.MinDate = d
		}
		if d > nb.MaxDate {
			nb.MaxDate = d
		}
	}

	return nb, nil
}

// normalizeDate coerces a remote date value into the YYYYMMDD storage
// convention. Unparseable values become empty strings so the caller can
// reject rows whose primary date is unusable.
func normalizeDate(v any) any {
	s, ok := v.(string)
	if !ok {
		if t, isTime := v.(time.Time); isTime {
			return t.Format("20060102")
		}
		return v
	}
	if s == "" {
		return ""
	}

	if len(s) > 10 {
		// RFC3339 and friends: keep the date prefix
		s = s[:10]
	}
	for _, layout := range []string{"20060102", "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("20060102")
		}
	}
	return ""
}
