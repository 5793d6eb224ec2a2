package goSignup

import (
	"context"
	"errors"
	"testing"
	"time"
)

func limiterConfig() SignupConfig {
	return SignupConfig{
		Enabled:                  true,
		Enforce:                  true,
		EnableIdentifierThrottle: true,
		EnableIPThrottle:         true,
		MaxAttempts:              3,
		Cooldown:                 time.Minute,
		RedisPrefix:              "sg",
	}
}

func TestLimiterPassThroughWhenNotEnforced(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := limiterConfig()
	cfg.Enforce = false
	limiter := newSignupLimiter(rdb, cfg)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		if err := limiter.Admit(ctx, "alice", "203.0.113.5"); err != nil {
			t.Fatalf("unexpected admission failure: %v", err)
		}
	}
	if rdb.Exists(ctx, "sg:u:alice").Val() != 0 {
		t.Fatal("pass-through mode must not touch redis")
	}
}

func TestLimiterIdentifierBudget(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	limiter := newSignupLimiter(rdb, limiterConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.Admit(ctx, "alice", ""); err != nil {
			t.Fatalf("attempt %d should be admitted: %v", i, err)
		}
	}

	err := limiter.Admit(ctx, "alice", "")
	if !errors.Is(err, errSignupRateLimited) {
		t.Fatalf("expected rate limit after budget, got %v", err)
	}

	// A different identifier has its own budget.
	if err := limiter.Admit(ctx, "bob", ""); err != nil {
		t.Fatalf("unrelated identifier should be admitted: %v", err)
	}
}

func TestLimiterIPBudgetSharedAcrossIdentifiers(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	limiter := newSignupLimiter(rdb, limiterConfig())
	ctx := context.Background()

	names := []string{"u1", "u2", "u3"}
	for _, name := range names {
		if err := limiter.Admit(ctx, name, "203.0.113.5"); err != nil {
			t.Fatalf("admission for %s failed: %v", name, err)
		}
	}

	err := limiter.Admit(ctx, "u4", "203.0.113.5")
	if !errors.Is(err, errSignupRateLimited) {
		t.Fatalf("expected shared IP budget exhaustion, got %v", err)
	}
}

func TestLimiterCooldownExpiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	limiter := newSignupLimiter(rdb, limiterConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.Admit(ctx, "alice", ""); err != nil {
			t.Fatalf("attempt %d failed: %v", i, err)
		}
	}
	if err := limiter.Admit(ctx, "alice", ""); !errors.Is(err, errSignupRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := limiter.Admit(ctx, "alice", ""); err != nil {
		t.Fatalf("expected fresh budget after cooldown, got %v", err)
	}
}

func TestLimiterEmptyClientKeySkipsIPThrottle(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	limiter := newSignupLimiter(rdb, limiterConfig())
	ctx := context.Background()

	if err := limiter.Admit(ctx, "alice", ""); err != nil {
		t.Fatalf("admission failed: %v", err)
	}
	if rdb.Exists(ctx, "sg:ip:").Val() != 0 {
		t.Fatal("empty client key must not create an IP counter")
	}
}

func TestLimiterRedisUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)

	limiter := newSignupLimiter(rdb, limiterConfig())
	mr.Close()

	err := limiter.Admit(context.Background(), "alice", "203.0.113.5")
	if !errors.Is(err, errSignupRedisUnavailable) {
		t.Fatalf("expected errSignupRedisUnavailable, got %v", err)
	}
}
