package tushare

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"marketsync/internal/domain"
)

// Fetcher retrieves one logical table's worth of records, transparently
// paging with increasing offsets until a short or empty page.
type Fetcher struct {
	client *Client
	logger *slog.Logger
}

// NewFetcher creates a paginated fetcher on top of client.
func NewFetcher(client *Client, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logger.With("component", "fetcher"),
	}
}

// FetchPages streams pages to fn in retrieval order until exhaustion, until
// fn signals a stop, or until an error. It returns the number of page calls
// made. A terminal failure on the first page leaves the caller with zero
// rows delivered and the error.
func (f *Fetcher) FetchPages(
	ctx context.Context,
	apiName string,
	fields []string,
	params map[string]string,
	pageSize int,
	fn func(page domain.Rows) (stop bool, err error),
) (int, error) {
	offset := 0
	calls := 0

	for {
		pageParams := make(map[string]string, len(params)+2)
		for k, v := range params {
			pageParams[k] = v
		}
		pageParams["limit"] = strconv.Itoa(pageSize)
		pageParams["offset"] = strconv.Itoa(offset)

		page, err := f.client.Call(ctx, apiName, pageParams, fields)
		calls++
		if err != nil {
			return calls, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}

		f.logger.Debug("fetched page",
			"api", apiName,
			"offset", offset,
			"rows", page.Len(),
		)

		if page.Len() == 0 {
			return calls, nil
		}

		stop, err := fn(page)
		if err != nil {
			return calls, err
		}
		if stop {
			return calls, nil
		}

		if page.Len() < pageSize {
			return calls, nil
		}
		offset += page.Len()
	}
}

// Fetch concatenates all pages for one parameter set in retrieval order.
// No dedup happens here; primary-key dedup is the writer's concern.
func (f *Fetcher) Fetch(ctx context.Context, apiName string, fields []string, params map[string]string, pageSize int) (domain.Rows, error) {
	var all domain.Rows
	_, err := f.FetchPages(ctx, apiName, fields, params, pageSize, func(page domain.Rows) (bool, error) {
		if all.Fields == nil {
			all.Fields = page.Fields
		}
		all.Items = append(all.Items, page.Items...)
		return false, nil
	})
	if err != nil {
		return domain.Rows{}, err
	}
	return all, nil
}
