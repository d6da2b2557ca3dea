package catalog

// Builtin returns the default catalog of managed tables, grouped into the
// categories that each map to one database file.
func Builtin() (*Catalog, error) {
	return New([]Category{
		{Name: "stock", Tables: []TableSpec{
			{
				Name: "daily",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"},
					{"open", "DOUBLE"}, {"high", "DOUBLE"}, {"low", "DOUBLE"},
					{"close", "DOUBLE"}, {"pre_close", "DOUBLE"}, {"change", "DOUBLE"},
					{"pct_chg", "DOUBLE"}, {"vol", "DOUBLE"}, {"amount", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "19901219",
				PageSize:     6000,
			},
			{
				Name: "adj_factor",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"}, {"adj_factor", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "19901219",
				PageSize:     6000,
			},
			{
				Name: "daily_basic",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"},
					{"close", "DOUBLE"}, {"turnover_rate", "DOUBLE"}, {"turnover_rate_f", "DOUBLE"},
					{"volume_ratio", "DOUBLE"}, {"pe", "DOUBLE"}, {"pe_ttm", "DOUBLE"},
					{"pb", "DOUBLE"}, {"ps", "DOUBLE"}, {"ps_ttm", "DOUBLE"},
					{"dv_ratio", "DOUBLE"}, {"dv_ttm", "DOUBLE"},
					{"total_share", "DOUBLE"}, {"float_share", "DOUBLE"}, {"free_share", "DOUBLE"},
					{"total_mv", "DOUBLE"}, {"circ_mv", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20040102",
				PageSize:     6000,
			},
			{
				Name: "stk_limit",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"},
					{"pre_close", "DOUBLE"}, {"up_limit", "DOUBLE"}, {"down_limit", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20070101",
				PageSize:     5800,
			},
			{
				Name: "suspend_d",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"},
					{"suspend_timing", "VARCHAR"}, {"suspend_type", "VARCHAR"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20200101",
				PageSize:     5000,
			},
		}},
		{Name: "basic", Tables: []TableSpec{
			{
				Name: "stock_basic",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"symbol", "VARCHAR"}, {"name", "VARCHAR"},
					{"area", "VARCHAR"}, {"industry", "VARCHAR"}, {"fullname", "VARCHAR"},
					{"enname", "VARCHAR"}, {"cnspell", "VARCHAR"}, {"market", "VARCHAR"},
					{"exchange", "VARCHAR"}, {"curr_type", "VARCHAR"}, {"list_status", "VARCHAR"},
					{"list_date", "VARCHAR"}, {"delist_date", "VARCHAR"}, {"is_hs", "VARCHAR"},
					{"act_name", "VARCHAR"}, {"act_ent_type", "VARCHAR"},
				},
				PrimaryKey:   []string{"ts_code"},
				DateColumn:   "list_date",
				DateColumns:  []string{"list_date", "delist_date"},
				DateKind:     DateCalendar,
				Strategy:     StrategyFullPaging,
				EarliestDate: "19901219",
				PageSize:     1000,
			},
			{
				Name: "stock_company",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"com_name", "VARCHAR"}, {"com_id", "VARCHAR"},
					{"exchange", "VARCHAR"}, {"chairman", "VARCHAR"}, {"manager", "VARCHAR"},
					{"secretary", "VARCHAR"}, {"reg_capital", "DOUBLE"}, {"setup_date", "VARCHAR"},
					{"province", "VARCHAR"}, {"city", "VARCHAR"}, {"introduction", "VARCHAR"},
					{"website", "VARCHAR"}, {"email", "VARCHAR"}, {"office", "VARCHAR"},
					{"employees", "INTEGER"}, {"main_business", "VARCHAR"}, {"business_scope", "VARCHAR"},
				},
				PrimaryKey:   []string{"ts_code"},
				DateColumn:   "setup_date",
				DateKind:     DateCalendar,
				Strategy:     StrategyFullPaging,
				EarliestDate: "19901219",
				PageSize:     1000,
			},
			{
				Name: "trade_cal",
				Columns: []ColumnSpec{
					{"exchange", "VARCHAR"}, {"cal_date", "VARCHAR"},
					{"is_open", "VARCHAR"}, {"pretrade_date", "VARCHAR"},
				},
				PrimaryKey:     []string{"exchange", "cal_date"},
				DateColumn:     "cal_date",
				DateColumns:    []string{"cal_date", "pretrade_date"},
				DateKind:       DateCalendar,
				Strategy:       StrategyRange,
				EarliestDate:   "19901219",
				PageSize:       8000,
				RequiredParams: map[string][]string{"exchange": {"SSE", "SZSE"}},
			},
			{
				Name: "namechange",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"name", "VARCHAR"}, {"start_date", "VARCHAR"},
					{"end_date", "VARCHAR"}, {"ann_date", "VARCHAR"}, {"change_reason", "VARCHAR"},
				},
				PrimaryKey:   []string{"ts_code", "name", "start_date"},
				DateColumn:   "start_date",
				DateColumns:  []string{"start_date", "end_date", "ann_date"},
				DateKind:     DateCalendar,
				Strategy:     StrategyFullPaging,
				EarliestDate: "19901219",
				PageSize:     3000,
			},
		}},
		{Name: "index", Tables: []TableSpec{
			{
				Name: "index_daily",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"},
					{"close", "DOUBLE"}, {"open", "DOUBLE"}, {"high", "DOUBLE"}, {"low", "DOUBLE"},
					{"pre_close", "DOUBLE"}, {"change", "DOUBLE"}, {"pct_chg", "DOUBLE"},
					{"vol", "DOUBLE"}, {"amount", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategyRange,
				EarliestDate: "19901219",
				PageSize:     8000,
				RequiredParams: map[string][]string{"ts_code": {
					"000001.SH", "000300.SH", "000905.SH", "399001.SZ", "399006.SZ",
				}},
			},
			{
				Name: "index_dailybasic",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"},
					{"total_mv", "DOUBLE"}, {"float_mv", "DOUBLE"},
					{"total_share", "DOUBLE"}, {"float_share", "DOUBLE"}, {"free_share", "DOUBLE"},
					{"turnover_rate", "DOUBLE"}, {"turnover_rate_f", "DOUBLE"},
					{"pe", "DOUBLE"}, {"pe_ttm", "DOUBLE"}, {"pb", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20040102",
				PageSize:     3000,
			},
			{
				Name: "sw_daily",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"}, {"name", "VARCHAR"},
					{"open", "DOUBLE"}, {"low", "DOUBLE"}, {"high", "DOUBLE"}, {"close", "DOUBLE"},
					{"change", "DOUBLE"}, {"pct_change", "DOUBLE"},
					{"vol", "DOUBLE"}, {"amount", "DOUBLE"},
					{"pe", "DOUBLE"}, {"pb", "DOUBLE"},
					{"float_mv", "DOUBLE"}, {"total_mv", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20210101",
				PageSize:     4000,
			},
		}},
		{Name: "reference", Tables: []TableSpec{
			{
				Name: "block_trade",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"},
					{"price", "DOUBLE"}, {"vol", "DOUBLE"}, {"amount", "DOUBLE"},
					{"buyer", "VARCHAR"}, {"seller", "VARCHAR"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20100101",
				PageSize:     1000,
			},
		}},
		{Name: "margin", Tables: []TableSpec{
			{
				Name: "margin",
				Columns: []ColumnSpec{
					{"trade_date", "VARCHAR"}, {"exchange_id", "VARCHAR"},
					{"rzye", "DOUBLE"}, {"rzmre", "DOUBLE"}, {"rzche", "DOUBLE"},
					{"rqye", "DOUBLE"}, {"rqmcl", "DOUBLE"}, {"rzrqye", "DOUBLE"}, {"rqyl", "DOUBLE"},
				},
				PrimaryKey:   []string{"trade_date", "exchange_id"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategyRange,
				EarliestDate: "20100331",
				PageSize:     3000,
			},
			{
				Name: "margin_detail",
				Columns: []ColumnSpec{
					{"trade_date", "VARCHAR"}, {"ts_code", "VARCHAR"},
					{"rzye", "DOUBLE"}, {"rqye", "DOUBLE"}, {"rzmre", "DOUBLE"},
					{"rqyl", "DOUBLE"}, {"rzche", "DOUBLE"}, {"rqchl", "DOUBLE"},
					{"rqmcl", "DOUBLE"}, {"rzrqye", "DOUBLE"},
				},
				PrimaryKey:   []string{"trade_date", "ts_code"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20100331",
				PageSize:     5000,
			},
		}},
		{Name: "moneyflow", Tables: []TableSpec{
			{
				Name: "moneyflow",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"},
					{"buy_sm_vol", "INTEGER"}, {"buy_sm_amount", "DOUBLE"},
					{"sell_sm_vol", "INTEGER"}, {"sell_sm_amount", "DOUBLE"},
					{"buy_md_vol", "INTEGER"}, {"buy_md_amount", "DOUBLE"},
					{"sell_md_vol", "INTEGER"}, {"sell_md_amount", "DOUBLE"},
					{"buy_lg_vol", "INTEGER"}, {"buy_lg_amount", "DOUBLE"},
					{"sell_lg_vol", "INTEGER"}, {"sell_lg_amount", "DOUBLE"},
					{"buy_elg_vol", "INTEGER"}, {"buy_elg_amount", "DOUBLE"},
					{"sell_elg_vol", "INTEGER"}, {"sell_elg_amount", "DOUBLE"},
					{"net_mf_vol", "INTEGER"}, {"net_mf_amount", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20100101",
				PageSize:     6000,
			},
			{
				Name: "moneyflow_mkt_dc",
				Columns: []ColumnSpec{
					{"trade_date", "VARCHAR"},
					{"close_sh", "DOUBLE"}, {"pct_change_sh", "DOUBLE"},
					{"close_sz", "DOUBLE"}, {"pct_change_sz", "DOUBLE"},
					{"net_amount", "DOUBLE"}, {"net_amount_rate", "DOUBLE"},
					{"buy_elg_amount", "DOUBLE"}, {"buy_elg_amount_rate", "DOUBLE"},
					{"buy_lg_amount", "DOUBLE"}, {"buy_lg_amount_rate", "DOUBLE"},
					{"buy_md_amount", "DOUBLE"}, {"buy_md_amount_rate", "DOUBLE"},
					{"buy_sm_amount", "DOUBLE"}, {"buy_sm_amount_rate", "DOUBLE"},
				},
				PrimaryKey:   []string{"trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategyRange,
				EarliestDate: "20230911",
				PageSize:     3000,
			},
		}},
		{Name: "fund", Tables: []TableSpec{
			{
				Name: "fund_daily",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"},
					{"pre_close", "DOUBLE"}, {"open", "DOUBLE"}, {"high", "DOUBLE"}, {"low", "DOUBLE"},
					{"close", "DOUBLE"}, {"change", "DOUBLE"}, {"pct_chg", "DOUBLE"},
					{"vol", "DOUBLE"}, {"amount", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "trade_date"},
				DateColumn:   "trade_date",
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20120101",
				PageSize:     2000,
			},
			{
				Name: "fund_nav",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"ann_date", "VARCHAR"}, {"nav_date", "VARCHAR"},
					{"unit_nav", "DOUBLE"}, {"accum_nav", "DOUBLE"}, {"accum_div", "DOUBLE"},
					{"net_asset", "DOUBLE"}, {"total_netasset", "DOUBLE"}, {"adj_nav", "DOUBLE"},
				},
				PrimaryKey:   []string{"ts_code", "nav_date"},
				DateColumn:   "nav_date",
				DateColumns:  []string{"nav_date", "ann_date"},
				DateKind:     DateTrading,
				Strategy:     StrategySingle,
				EarliestDate: "20120101",
				PageSize:     15000,
				DateParam:    "nav_date",
			},
		}},
		{Name: "option", Tables: []TableSpec{
			{
				Name: "opt_basic",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"exchange", "VARCHAR"}, {"name", "VARCHAR"},
					{"per_unit", "VARCHAR"}, {"opt_code", "VARCHAR"}, {"opt_type", "VARCHAR"},
					{"call_put", "VARCHAR"}, {"exercise_type", "VARCHAR"}, {"exercise_price", "DOUBLE"},
					{"s_month", "VARCHAR"}, {"maturity_date", "VARCHAR"},
					{"list_price", "DOUBLE"}, {"list_date", "VARCHAR"}, {"delist_date", "VARCHAR"},
					{"last_edate", "VARCHAR"}, {"last_ddate", "VARCHAR"},
					{"quote_unit", "VARCHAR"}, {"min_price_chg", "VARCHAR"},
				},
				PrimaryKey:     []string{"ts_code"},
				DateColumn:     "list_date",
				DateColumns:    []string{"list_date", "delist_date", "maturity_date"},
				DateKind:       DateCalendar,
				Strategy:       StrategyFullPaging,
				EarliestDate:   "20150209",
				PageSize:       2000,
				RequiredParams: map[string][]string{"exchange": {"SSE", "SZSE"}},
			},
			{
				Name: "opt_daily",
				Columns: []ColumnSpec{
					{"ts_code", "VARCHAR"}, {"trade_date", "VARCHAR"}, {"exchange", "VARCHAR"},
					{"pre_settle", "DOUBLE"}, {"pre_close", "DOUBLE"},
					{"open", "DOUBLE"}, {"high", "DOUBLE"}, {"low", "DOUBLE"}, {"close", "DOUBLE"},
					{"settle", "DOUBLE"}, {"vol", "DOUBLE"}, {"amount", "DOUBLE"}, {"oi", "DOUBLE"},
				},
				PrimaryKey:     []string{"ts_code", "trade_date"},
				DateColumn:     "trade_date",
				DateKind:       DateTrading,
				Strategy:       StrategySingle,
				EarliestDate:   "20150209",
				PageSize:       2000,
				RequiredParams: map[string][]string{"exchange": {"SSE", "SZSE"}},
			},
		}},
		{Name: "macro", Tables: []TableSpec{
			{
				Name: "shibor",
				Columns: []ColumnSpec{
					{"date", "VARCHAR"},
					{"on", "DOUBLE"}, {"1w", "DOUBLE"}, {"2w", "DOUBLE"},
					{"1m", "DOUBLE"}, {"3m", "DOUBLE"}, {"6m", "DOUBLE"},
					{"9m", "DOUBLE"}, {"1y", "DOUBLE"},
				},
				PrimaryKey:   []string{"date"},
				DateColumn:   "date",
				DateKind:     DateCalendar,
				Strategy:     StrategyRange,
				EarliestDate: "20061008",
				PageSize:     4000,
			},
			{
				Name: "us_tycr",
				Columns: []ColumnSpec{
					{"date", "VARCHAR"},
					{"m1", "DOUBLE"}, {"m2", "DOUBLE"}, {"m3", "DOUBLE"}, {"m6", "DOUBLE"},
					{"y1", "DOUBLE"}, {"y2", "DOUBLE"}, {"y3", "DOUBLE"}, {"y5", "DOUBLE"},
					{"y7", "DOUBLE"}, {"y10", "DOUBLE"}, {"y20", "DOUBLE"}, {"y30", "DOUBLE"},
				},
				PrimaryKey:   []string{"date"},
				DateColumn:   "date",
				DateKind:     DateCalendar,
				Strategy:     StrategyRange,
				EarliestDate: "19900102",
				PageSize:     4000,
			},
		}},
	})
}
