package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() TableSpec {
	return TableSpec{
		Name: "daily",
		Columns: []ColumnSpec{
			{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"}, {"close", "DOUBLE"},
		},
		PrimaryKey:   []string{"ts_code", "trade_date"},
		DateColumn:   "trade_date",
		DateKind:     DateTrading,
		Strategy:     StrategySingle,
		EarliestDate: "19901219",
		PageSize:     6000,
	}
}

func TestBuiltinValidates(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)
	require.NotEmpty(t, c.Categories())

	spec, cat, ok := c.Lookup("daily")
	require.True(t, ok)
	assert.Equal(t, "stock", cat.Name)
	assert.Equal(t, []string{"ts_code", "trade_date"}, spec.PrimaryKey)

	_, _, ok = c.Lookup("no_such_table")
	assert.False(t, ok)

	_, ok = c.Category("macro")
	assert.True(t, ok)
}

func TestValidateRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*TableSpec)
	}{
		{"missing pk column", func(s *TableSpec) { s.PrimaryKey = []string{"nope"} }},
		{"unknown strategy", func(s *TableSpec) { s.Strategy = "weekly" }},
		{"missing date column", func(s *TableSpec) { s.DateColumn = "" }},
		{"undeclared date column", func(s *TableSpec) { s.DateColumn = "settle_date" }},
		{"zero page size", func(s *TableSpec) { s.PageSize = 0 }},
		{"bad earliest date", func(s *TableSpec) { s.EarliestDate = "1990-12-19" }},
		{"mapping to unknown column", func(s *TableSpec) {
			s.FieldMappings = map[string]string{"leading": "leading_stock"}
		}},
		{"pk missing from fields", func(s *TableSpec) { s.Fields = []string{"trade_date", "close"} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := validSpec()
			tc.mutate(&spec)
			_, err := New([]Category{{Name: "stock", Tables: []TableSpec{spec}}})
			assert.Error(t, err)
		})
	}
}

func TestNewRejectsDuplicateTables(t *testing.T) {
	spec := validSpec()
	_, err := New([]Category{
		{Name: "stock", Tables: []TableSpec{spec}},
		{Name: "index", Tables: []TableSpec{spec}},
	})
	assert.Error(t, err)
}

func TestCreateTableSQL(t *testing.T) {
	spec := validSpec()
	sql := spec.CreateTableSQL()
	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "daily"`)
	assert.Contains(t, sql, `"trade_date" VARCHAR`)
	assert.Contains(t, sql, `PRIMARY KEY ("ts_code", "trade_date")`)

	idx := spec.CreateIndexSQL()
	assert.Contains(t, idx, "idx_daily_pk")
	assert.Contains(t, idx, "UNIQUE INDEX")
}

func TestMappedField(t *testing.T) {
	spec := validSpec()
	spec.FieldMappings = map[string]string{"pct_change": "close"}
	assert.Equal(t, "close", spec.MappedField("pct_change"))
	assert.Equal(t, "ts_code", spec.MappedField("ts_code"))
}

func TestAPIFieldsDefaultsToColumns(t *testing.T) {
	spec := validSpec()
	assert.Equal(t, []string{"ts_code", "trade_date", "close"}, spec.APIFields())

	spec.Fields = []string{"ts_code", "trade_date"}
	assert.Equal(t, []string{"ts_code", "trade_date"}, spec.APIFields())
}
