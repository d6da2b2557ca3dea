// Package tushare talks to the tushare-style data API: rate-limited calls
// with cooldown/backoff retries, plus offset-based pagination on top.
package tushare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"marketsync/internal/domain"
)

// throttlePattern matches the remote's rate-limit messages.
var throttlePattern = regexp.MustCompile(`最多访问该接口|每分钟最多访问`)

// Config holds client configuration.
type Config struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Cooldown       time.Duration
}

// Client wraps the remote API with retry, backoff, and cooldown-on-throttle
// behavior. Exhausted retries surface as a typed error, never a panic.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	cooldown       time.Duration
	logger         *slog.Logger

	// wait is the suspension primitive; replaced in tests to observe
	// cooldown/backoff invocations without sleeping.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient creates a rate-limited API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		token:          cfg.Token,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		cooldown:       cfg.Cooldown,
		logger:         logger.With("component", "tushare"),
		wait:           sleepWait,
	}
}

func sleepWait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Call invokes one endpoint and returns its rows. Retryable failures are
// retried up to MaxAttempts with the wait dictated by their class; the last
// error is returned after exhaustion.
func (c *Client) Call(ctx context.Context, apiName string, params map[string]string, fields []string) (domain.Rows, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		rows, err := c.doCall(ctx, apiName, params, fields)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		if !domain.IsRetryable(err) {
			c.logger.Error("call failed",
				"api", apiName,
				"error", err,
			)
			return domain.Rows{}, err
		}

		if attempt == c.maxAttempts {
			break
		}

		if domain.IsRateLimited(err) {
			c.logger.Warn("rate limited, cooling down",
				"api", apiName,
				"attempt", attempt,
				"cooldown", c.cooldown,
			)
			if werr := c.wait(ctx, c.cooldown); werr != nil {
				return domain.Rows{}, werr
			}
			continue
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("call failed, retrying",
			"api", apiName,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if werr := c.wait(ctx, backoff); werr != nil {
			return domain.Rows{}, werr
		}
	}

	c.logger.Error("retries exhausted",
		"api", apiName,
		"attempts", c.maxAttempts,
		"error", lastErr,
	)
	return domain.Rows{}, fmt.Errorf("after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) doCall(ctx context.Context, apiName string, params map[string]string, fields []string) (domain.Rows, error) {
	body, err := json.Marshal(apiRequest{
		APIName: apiName,
		Token:   c.token,
		Params:  params,
		Fields:  strings.Join(fields, ","),
	})
	if err != nil {
		return domain.Rows{}, &domain.FetchError{Class: domain.RetryNone, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return domain.Rows{}, &domain.FetchError{Class: domain.RetryNone, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Rows{}, &domain.FetchError{Class: domain.RetryBackoff, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.Rows{}, &domain.FetchError{Class: domain.RetryCooldown, Err: fmt.Errorf("http %d", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return domain.Rows{}, &domain.FetchError{Class: domain.RetryBackoff, Err: fmt.Errorf("http %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return domain.Rows{}, &domain.FetchError{Class: domain.RetryNone, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Rows{}, &domain.FetchError{Class: domain.RetryBackoff, Err: fmt.Errorf("read response: %w", err)}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return domain.Rows{}, &domain.FetchError{Class: domain.RetryBackoff, Err: fmt.Errorf("decode response: %w", err)}
	}

	if apiResp.Code != 0 {
		apiErr := &APIError{Code: apiResp.Code, Msg: apiResp.Msg}
		if throttlePattern.MatchString(apiResp.Msg) {
			return domain.Rows{}, &domain.FetchError{Class: domain.RetryCooldown, Err: apiErr}
		}
		return domain.Rows{}, &domain.FetchError{Class: domain.RetryNone, Err: apiErr}
	}

	if apiResp.Data == nil {
		return domain.Rows{}, nil
	}
	return domain.Rows{Fields: apiResp.Data.Fields, Items: apiResp.Data.Items}, nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}
