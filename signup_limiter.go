package goSignup

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	errSignupRateLimited      = errors.New("signup rate limited")
	errSignupRedisUnavailable = errors.New("signup redis unavailable")
)

// signupLimiter admits or rejects a hashing attempt keyed by the candidate
// username and the client IP. Counters live in Redis so concurrent attempts
// across processes share the same budget.
type signupLimiter struct {
	redis  *redis.Client
	config SignupConfig
}

func newSignupLimiter(redisClient *redis.Client, cfg SignupConfig) *signupLimiter {
	return &signupLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Admit describes the admit operation and its observable behavior.
//
// Admit may return an error when input validation, dependency calls, or security checks fail.
// Admit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *signupLimiter) Admit(ctx context.Context, username, clientKey string) error {
	if !l.config.Enforce {
		return nil
	}

	if l.config.EnableIdentifierThrottle {
		if err := l.admitKey(ctx, l.identifierKey(username)); err != nil {
			return err
		}
	}

	if l.config.EnableIPThrottle && clientKey != "" {
		if err := l.admitKey(ctx, l.clientKey(clientKey)); err != nil {
			return err
		}
	}

	return nil
}

func (l *signupLimiter) admitKey(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errSignupRedisUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", errSignupRedisUnavailable, err)
		}
	}

	if count > int64(l.config.MaxAttempts) {
		return errSignupRateLimited
	}

	return nil
}

func (l *signupLimiter) identifierKey(username string) string {
	return l.config.RedisPrefix + ":u:" + username
}

func (l *signupLimiter) clientKey(clientKey string) string {
	return l.config.RedisPrefix + ":ip:" + clientKey
}
