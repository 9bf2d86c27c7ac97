package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var (
	okReply   = MockResponse{Content: json.RawMessage(`{"action":"probe_deeper"}`)}
	downReply = MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection reset")}}
	badReply  = MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`probe?`), Err: errors.New("not JSON")}}
)

func quotaReply(after time.Duration) MockResponse {
	return MockResponse{Err: &ErrRateLimit{RetryAfter: after, Err: errors.New("RESOURCE_EXHAUSTED")}}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		cfg       func(*RetryConfig)
		replies   []MockResponse
		wantCalls int
		wantErr   func(error) bool
	}{
		{
			name:      "first attempt succeeds",
			replies:   []MockResponse{okReply},
			wantCalls: 1,
		},
		{
			name:      "transport failure then success",
			replies:   []MockResponse{downReply, okReply},
			wantCalls: 2,
		},
		{
			name:      "every attempt fails",
			replies:   []MockResponse{downReply, downReply, downReply, okReply},
			wantCalls: 3,
			wantErr:   func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) },
		},
		{
			name:      "truncated output is final",
			replies:   []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okReply},
			wantCalls: 1,
			wantErr:   func(err error) bool { var e *ErrMaxTokensExceeded; return errors.As(err, &e) },
		},
		{
			name:      "malformed answer gets one more try",
			replies:   []MockResponse{badReply, okReply},
			wantCalls: 2,
		},
		{
			name:      "malformed twice gives up",
			replies:   []MockResponse{badReply, badReply, okReply},
			wantCalls: 2,
			wantErr:   func(err error) bool { var e *ErrInvalidResponse; return errors.As(err, &e) },
		},
		{
			name:      "quota surfaces by default",
			replies:   []MockResponse{quotaReply(0), okReply},
			wantCalls: 1,
			wantErr:   IsQuota,
		},
		{
			name:      "quota waited out when enabled",
			cfg:       func(c *RetryConfig) { c.RetryRateLimit = true },
			replies:   []MockResponse{quotaReply(time.Millisecond), okReply},
			wantCalls: 2,
		},
		{
			name:      "quota wait beyond MaxWait surfaces",
			cfg:       func(c *RetryConfig) { c.RetryRateLimit = true },
			replies:   []MockResponse{quotaReply(30 * time.Second), okReply},
			wantCalls: 1,
			wantErr:   IsQuota,
		},
		{
			name:      "zero attempts still calls once",
			cfg:       func(c *RetryConfig) { c.MaxAttempts = 0 },
			replies:   []MockResponse{downReply, okReply},
			wantCalls: 1,
			wantErr:   func(err error) bool { return err != nil },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fastRetry()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			mock := NewMockProvider(tt.replies...)
			resp, err := WithRetry(mock, cfg).Generate(context.Background(), Request{})

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(resp.Content) != string(okReply.Content) {
					t.Errorf("content = %s", resp.Content)
				}
			} else if !tt.wantErr(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetryStopsBeforeDeadline(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialWait: time.Second, MaxWait: 5 * time.Second, Multiplier: 2}
	mock := NewMockProvider(downReply, okReply)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	var down *ErrProviderUnavailable
	if !errors.As(err, &down) {
		t.Fatalf("err = %v, want the provider error rather than a deadline", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
	if time.Since(start) > 40*time.Millisecond {
		t.Error("should not sleep toward the deadline")
	}
}

func TestRetryCancelledWhileWaiting(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialWait: time.Second, MaxWait: time.Second, Multiplier: 1}
	mock := NewMockProvider(downReply, okReply)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRetryBackoffBounds(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}}
	for attempt, base := range []time.Duration{100, 200, 300, 300} {
		base *= time.Millisecond
		for range 20 {
			got := r.backoff(attempt)
			if got < base*8/10 || got > base*12/10 {
				t.Fatalf("backoff(%d) = %s, outside %s ±20%%", attempt, got, base)
			}
		}
	}
}

func TestRetryModelID(t *testing.T) {
	if got := WithRetry(NewMockProvider(), fastRetry()).ModelID(); got != "mock" {
		t.Fatalf("ModelID = %q, want mock", got)
	}
}
