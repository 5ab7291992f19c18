package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/wonny/ipo-scorecard/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() on disabled client = %v", err)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")
	cfg := AnalyzeRateLimit("127.0.0.1", 10)

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != cfg.Limit {
		t.Errorf("Expected remaining = %d, got %d", cfg.Limit, remaining)
	}
}

func TestParseWindowReply(t *testing.T) {
	tests := []struct {
		name      string
		reply     []interface{}
		allowed   bool
		remaining int
		wantErr   bool
	}{
		{"allowed", []interface{}{int64(1), int64(4)}, true, 4, false},
		{"denied", []interface{}{int64(0), int64(0)}, false, 0, false},
		{"string members", []interface{}{"1", "4"}, false, 0, true},
		{"short reply", []interface{}{int64(1)}, false, 0, true},
		{"empty reply", nil, false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, remaining, err := parseWindowReply(tt.reply)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseWindowReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if allowed != tt.allowed || remaining != tt.remaining {
				t.Errorf("parseWindowReply() = (%v, %d), want (%v, %d)", allowed, remaining, tt.allowed, tt.remaining)
			}
		})
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")

	// When Redis is disabled, cache operations should be no-ops
	if err := cache.Set(context.Background(), "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "ResponseKey",
			fn:       func() string { return ResponseKey("ab12") },
			expected: "response:ab12",
		},
		{
			name:     "AnalyzeRateLimit",
			fn:       func() string { return AnalyzeRateLimit("10.0.0.1", 5).Key },
			expected: "analyze:10.0.0.1",
		},
		{
			name:     "cache key",
			fn:       func() string { return NewCache(Disabled(), "scorecard").key("response:x") },
			expected: "scorecard:cache:response:x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRateLimiter_Integration(t *testing.T) {
	if os.Getenv("REDIS_ENABLED") != "true" || testing.Short() {
		t.Skip("REDIS_ENABLED not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	limiter := NewRateLimiter(client, "test")
	rl := RateLimitConfig{Key: "it:" + time.Now().Format(time.RFC3339Nano), Limit: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		if allowed, _, err := limiter.Allow(context.Background(), rl); err != nil || !allowed {
			t.Fatalf("request %d: allowed=%v err=%v", i, allowed, err)
		}
	}
	if allowed, _, _ := limiter.Allow(context.Background(), rl); allowed {
		t.Error("Expected third request to be limited")
	}
}
