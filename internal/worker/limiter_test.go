package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, "huggingface"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different key has its own bucket
	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewLimiter(0.01, 1) // one token per 100s
	if !limiter.Allow("huggingface") {
		t.Fatal("first request should pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := limiter.Wait(ctx, "huggingface"); err == nil {
		t.Error("expected wait to fail once the deadline cannot be met")
	}
	if time.Since(start) > time.Second {
		t.Error("wait should give up early when the deadline is shorter than the refill")
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "203.0.113.7"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Token consumed by Wait
	if limiter.Allow("203.0.113.7") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("198.51.100.1") {
		t.Errorf("expected allow for other key")
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10) // fast default
	key := "medlineplus.gov"

	limiter.SetRate(key, 0.1, 1) // very slow

	if !limiter.Allow(key) {
		t.Errorf("first request should pass")
	}
	if limiter.Allow(key) {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("cdc.gov") {
		t.Errorf("other key should pass")
	}
}

func TestHostKey(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://medlineplus.gov/fever.html", "medlineplus.gov"},
		{"http://localhost:8080/x", "localhost:8080"},
		{"not a url", ""},
	}

	for _, tt := range tests {
		got, err := HostKey(tt.url)
		if err != nil {
			t.Errorf("HostKey(%q) error: %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("HostKey(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}

	if _, err := HostKey("http://[::1"); err == nil {
		t.Error("expected error for malformed URL")
	}
}
