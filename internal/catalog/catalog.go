// Package catalog holds the static schema catalog: every managed table's
// columns, primary key, date semantics, and synchronization strategy.
// The catalog is load-once and read-only; the sync engine never mutates it.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Strategy selects how dates are turned into fetch units for a table.
type Strategy string

const (
	// StrategySingle fetches one day at a time (daily OHLC-style tables).
	StrategySingle Strategy = "single"
	// StrategyRange fetches a whole start/end window in one logical call.
	StrategyRange Strategy = "range"
	// StrategyFullPaging ignores date filtering and pages through the whole
	// remote catalog, relying on primary-key dedup to skip stored rows.
	StrategyFullPaging Strategy = "full-paging"
)

// DateKind distinguishes exchange-open days from all calendar dates.
type DateKind string

const (
	DateTrading  DateKind = "trading"
	DateCalendar DateKind = "calendar"
)

// ColumnSpec is one local column definition.
type ColumnSpec struct {
	Name string
	Type string // DuckDB type: VARCHAR, DOUBLE, BIGINT, INTEGER, TIMESTAMP
}

// TableSpec is the full per-table sync configuration.
type TableSpec struct {
	// Name is the local table name; APIName the remote endpoint when it
	// differs (empty means same as Name).
	Name    string
	APIName string

	// Fields is the ordered field list requested from the remote API.
	Fields []string
	// Columns defines the local table; the DDL is generated from it.
	Columns []ColumnSpec

	// PrimaryKey is the composite column set used for dedup.
	PrimaryKey []string

	// DateColumn governs temporal coverage; DateColumns lists every column
	// whose values are normalized to YYYYMMDD before storage.
	DateColumn  string
	DateColumns []string

	DateKind DateKind
	Strategy Strategy

	// EarliestDate is the first permissible date; LatestDate bounds closed
	// historical tables (empty means open-ended through present).
	EarliestDate string
	LatestDate   string

	PageSize int

	// DateParam overrides the single-day API parameter name (default
	// trade_date). FixedParams are merged into every unit; RequiredParams
	// expand into a cartesian parameter grid (one unit family per combo).
	DateParam      string
	FixedParams    map[string]string
	RequiredParams map[string][]string

	// FieldMappings renames remote API fields to local column names.
	FieldMappings map[string]string
}

// APIFields returns the field list requested from the remote API; when the
// spec declares none, every local column is requested by name.
func (t TableSpec) APIFields() []string {
	if len(t.Fields) > 0 {
		return t.Fields
	}
	return t.ColumnNames()
}

// MappedField translates a remote API field name to its local column name.
func (t TableSpec) MappedField(field string) string {
	if to, ok := t.FieldMappings[field]; ok {
		return to
	}
	return field
}

// API returns the remote endpoint name for the table.
func (t TableSpec) API() string {
	if t.APIName != "" {
		return t.APIName
	}
	return t.Name
}

// ColumnNames returns the local column names in declaration order.
func (t TableSpec) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name is a declared local column.
func (t TableSpec) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CreateTableSQL renders the idempotent DDL for the table.
func (t TableSpec) CreateTableSQL() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %q (\n", t.Name)
	for _, c := range t.Columns {
		fmt.Fprintf(&sb, "\t%q %s,\n", c.Name, c.Type)
	}
	fmt.Fprintf(&sb, "\tPRIMARY KEY (%s)\n)", quoteJoin(t.PrimaryKey))
	return sb.String()
}

// CreateIndexSQL renders the unique index backing the primary key.
func (t TableSpec) CreateIndexSQL() string {
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_pk ON %q (%s)",
		t.Name, t.Name, quoteJoin(t.PrimaryKey))
}

func quoteJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
}

// validate fails fast on malformed specs so that configuration errors
// surface at load time rather than mid-sync.
func (t TableSpec) validate() error {
	if t.Name == "" {
		return fmt.Errorf("table spec without name")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", t.Name)
	}
	if len(t.PrimaryKey) == 0 {
		return fmt.Errorf("table %s: no primary key", t.Name)
	}
	for _, pk := range t.PrimaryKey {
		if !t.HasColumn(pk) {
			return fmt.Errorf("table %s: primary key column %s not declared", t.Name, pk)
		}
	}
	switch t.Strategy {
	case StrategySingle, StrategyRange, StrategyFullPaging:
	default:
		return fmt.Errorf("table %s: unknown strategy %q", t.Name, t.Strategy)
	}
	if t.DateColumn == "" {
		return fmt.Errorf("table %s: no date column", t.Name)
	}
	if !t.HasColumn(t.DateColumn) {
		return fmt.Errorf("table %s: date column %s not declared", t.Name, t.DateColumn)
	}
	for _, dc := range t.DateColumns {
		if !t.HasColumn(dc) {
			return fmt.Errorf("table %s: date column %s not declared", t.Name, dc)
		}
	}
	for from, to := range t.FieldMappings {
		if !t.HasColumn(to) {
			return fmt.Errorf("table %s: field mapping %s -> %s targets unknown column", t.Name, from, to)
		}
	}
	mapped := make(map[string]bool, len(t.APIFields()))
	for _, f := range t.APIFields() {
		mapped[t.MappedField(f)] = true
	}
	for _, pk := range t.PrimaryKey {
		if !mapped[pk] {
			return fmt.Errorf("table %s: primary key column %s not in API field list", t.Name, pk)
		}
	}
	if !mapped[t.DateColumn] {
		return fmt.Errorf("table %s: date column %s not in API field list", t.Name, t.DateColumn)
	}
	if t.PageSize <= 0 {
		return fmt.Errorf("table %s: page size must be positive", t.Name)
	}
	if err := checkDate(t.EarliestDate); err != nil {
		return fmt.Errorf("table %s: earliest date: %w", t.Name, err)
	}
	if t.LatestDate != "" {
		if err := checkDate(t.LatestDate); err != nil {
			return fmt.Errorf("table %s: latest date: %w", t.Name, err)
		}
	}
	return nil
}

func checkDate(s string) error {
	if s == "" {
		return fmt.Errorf("empty date")
	}
	if _, err := time.Parse("20060102", s); err != nil {
		return fmt.Errorf("not YYYYMMDD: %q", s)
	}
	return nil
}

// Category is a named group of tables bound to one database file.
type Category struct {
	Name   string
	Tables []TableSpec
}

// Table looks up a table spec within the category.
func (c Category) Table(name string) (TableSpec, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSpec{}, false
}

// TableNames returns the category's table names in declaration order.
func (c Category) TableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.Name
	}
	return names
}

// Catalog is the validated set of categories.
type Catalog struct {
	categories []Category
	byName     map[string]Category
}

// New validates the given categories and builds a catalog.
func New(categories []Category) (*Catalog, error) {
	c := &Catalog{
		categories: categories,
		byName:     make(map[string]Category, len(categories)),
	}
	seen := make(map[string]string)
	for _, cat := range categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("category without name")
		}
		if _, dup := c.byName[cat.Name]; dup {
			return nil, fmt.Errorf("duplicate category %s", cat.Name)
		}
		for _, t := range cat.Tables {
			if err := t.validate(); err != nil {
				return nil, err
			}
			if prev, dup := seen[t.Name]; dup {
				return nil, fmt.Errorf("table %s declared in both %s and %s", t.Name, prev, cat.Name)
			}
			seen[t.Name] = cat.Name
		}
		c.byName[cat.Name] = cat
	}
	return c, nil
}

// Categories returns all categories in declaration order.
func (c *Catalog) Categories() []Category { return c.categories }

// Category returns the named category.
func (c *Catalog) Category(name string) (Category, bool) {
	cat, ok := c.byName[name]
	return cat, ok
}

// CategoryNames returns all category names in declaration order.
func (c *Catalog) CategoryNames() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// Lookup finds a table anywhere in the catalog.
func (c *Catalog) Lookup(table string) (TableSpec, Category, bool) {
	for _, cat := range c.categories {
		if t, ok := cat.Table(table); ok {
			return t, cat, true
		}
	}
	return TableSpec{}, Category{}, false
}
