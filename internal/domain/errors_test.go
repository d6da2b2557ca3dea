package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchErrorClassification(t *testing.T) {
	cooldown := &FetchError{Class: RetryCooldown, Err: errors.New("throttled")}
	backoff := &FetchError{Class: RetryBackoff, Err: errors.New("timeout")}
	fatal := &FetchError{Class: RetryNone, Err: errors.New("bad params")}

	assert.True(t, IsRateLimited(cooldown))
	assert.False(t, IsRateLimited(backoff))

	assert.True(t, IsRetryable(cooldown))
	assert.True(t, IsRetryable(backoff))
	assert.False(t, IsRetryable(fatal))

	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestFetchErrorWrapping(t *testing.T) {
	inner := errors.New("connection reset")
	err := fmt.Errorf("call daily: %w", &FetchError{Class: RetryBackoff, Err: inner})

	assert.True(t, IsRetryable(err))
	assert.True(t, errors.Is(err, inner))
}

func TestStorageErr(t *testing.T) {
	assert.NoError(t, StorageErr(nil))

	err := StorageErr(errors.New("disk full"))
	assert.True(t, errors.Is(err, ErrStorage))
	assert.Contains(t, err.Error(), "disk full")
}

func TestParseStorageMode(t *testing.T) {
	mode, ok := ParseStorageMode("")
	assert.True(t, ok)
	assert.Equal(t, ModeInsertNew, mode)

	mode, ok = ParseStorageMode("replace")
	assert.True(t, ok)
	assert.Equal(t, ModeReplace, mode)

	_, ok = ParseStorageMode("upsert")
	assert.False(t, ok)
}

func TestReportOK(t *testing.T) {
	r := &Report{Tables: []SyncStats{{Table: "daily", Written: 10}}}
	assert.True(t, r.OK())

	r.Tables = append(r.Tables, SyncStats{Table: "margin", Failed: 1})
	assert.False(t, r.OK())

	r = &Report{Tables: []SyncStats{{Table: "daily", Aborted: true}}}
	assert.False(t, r.OK())
}
