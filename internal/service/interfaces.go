package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"marketsync/internal/catalog"
	"marketsync/internal/domain"
)

type Fetcher interface {
	Fetch(ctx context.Context, apiName string, fields []string, params map[string]string, pageSize int) (domain.Rows, error)
	FetchPages(ctx context.Context, apiName string, fields []string, params map[string]string, pageSize int, fn func(page domain.Rows) (bool, error)) (int, error)
}

type Writer interface {
	Apply(ctx context.Context, spec catalog.TableSpec, batch domain.RecordBatch, mode domain.StorageMode, opts domain.ApplyOptions) (domain.WriteResult, error)
}

type MetadataStore interface {
	EnsureMetadataTable(ctx context.Context) error
	Get(ctx context.Context, table string) (domain.Coverage, error)
}

type Calendar interface {
	TradeDates(ctx context.Context, exchange, start, end string) ([]string, error)
}

type SchemaManager interface {
	EnsureTable(ctx context.Context, spec catalog.TableSpec) error
}
