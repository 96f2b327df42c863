package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRetry(attempts int) *RetryConfig {
	return &RetryConfig{MaxAttempts: attempts, BaseDelay: time.Millisecond, Logger: NewDiscardLogger()}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := newTestRetry(5).Do(context.Background(), "flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	sentinel := errors.New("still down")
	err := newTestRetry(5).Do(context.Background(), "down", func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("error should wrap the last failure, got %v", err)
	}
	if calls != 5 {
		t.Errorf("calls: got %d, want 5", calls)
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	sentinel := errors.New("not found")
	err := newTestRetry(5).Do(context.Background(), "missing", func() error {
		calls++
		return Permanent(sentinel)
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("error should wrap the permanent failure, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour, Logger: NewDiscardLogger()}
	calls := 0
	err := r.Do(ctx, "cancelled", func() error {
		calls++
		cancel()
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestPermanentNil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}
