package stores

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrPendingNotFound         = errors.New("pending signup not found")
	ErrPendingSecretMismatch   = errors.New("pending signup secret mismatch")
	ErrPendingAttemptsExceeded = errors.New("pending signup attempts exceeded")
	ErrPendingRedisUnavailable = errors.New("pending signup redis unavailable")
)

// PendingSignup is the bookkeeping record persisted when an account is
// created with a confirmation requirement. SecretHash is empty for token
// strategies whose possession proof lives in the token itself.
type PendingSignup struct {
	AccountID       string `json:"account_id"`
	SecretHash      []byte `json:"secret_hash,omitempty"`
	APIVersion      string `json:"api_version,omitempty"`
	FingerprintHash string `json:"fingerprint_hash,omitempty"`
	Attempts        int    `json:"attempts"`
	ExpiresAt       int64  `json:"expires_at"`
}

// PendingSignupStore persists pending-signup records in Redis.
type PendingSignupStore struct {
	redis  *redis.Client
	prefix string
}

func NewPendingSignupStore(redisClient *redis.Client, prefix string) *PendingSignupStore {
	return &PendingSignupStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *PendingSignupStore) recordKey(recordID string) string {
	return s.prefix + ":r:" + recordID
}

func (s *PendingSignupStore) accountKey(accountID string) string {
	return s.prefix + ":a:" + accountID
}

// Save persists a pending record under both its record ID and its account ID.
// An earlier live record for the same account is deleted first, so each
// account has at most one confirmable token at any time.
func (s *PendingSignupStore) Save(ctx context.Context, recordID string, record *PendingSignup, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}

	prev, err := s.redis.Get(ctx, s.accountKey(record.AccountID)).Result()
	switch {
	case err == nil && prev != "":
		if err := s.redis.Del(ctx, s.recordKey(prev)).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
		}
	case err != nil && !errors.Is(err, redis.Nil):
		return fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.recordKey(recordID), data, ttl)
	pipe.Set(ctx, s.accountKey(record.AccountID), recordID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}

	return nil
}

// Consume removes and validates a record in one step. On a secret mismatch
// the record is restored with its remaining lifetime unless the attempt
// budget is spent.
func (s *PendingSignupStore) Consume(ctx context.Context, recordID string, providedHash []byte, maxAttempts int) (*PendingSignup, error) {
	data, err := s.redis.GetDel(ctx, s.recordKey(recordID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPendingNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}

	var record PendingSignup
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, ErrPendingNotFound
	}

	if record.ExpiresAt > 0 && time.Now().Unix() >= record.ExpiresAt {
		_ = s.redis.Del(ctx, s.accountKey(record.AccountID)).Err()
		return nil, ErrPendingNotFound
	}

	if len(record.SecretHash) > 0 {
		if len(providedHash) != len(record.SecretHash) ||
			subtle.ConstantTimeCompare(providedHash, record.SecretHash) != 1 {
			return nil, s.recordFailure(ctx, recordID, &record, maxAttempts)
		}
	}

	_ = s.redis.Del(ctx, s.accountKey(record.AccountID)).Err()
	return &record, nil
}

// PendingByAccount reports whether a live record exists for the account.
func (s *PendingSignupStore) PendingByAccount(ctx context.Context, accountID string) (bool, error) {
	_, err := s.redis.Get(ctx, s.accountKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}
	return true, nil
}

func (s *PendingSignupStore) recordFailure(ctx context.Context, recordID string, record *PendingSignup, maxAttempts int) error {
	record.Attempts++
	if maxAttempts > 0 && record.Attempts >= maxAttempts {
		_ = s.redis.Del(ctx, s.accountKey(record.AccountID)).Err()
		return ErrPendingAttemptsExceeded
	}

	remaining := time.Until(time.Unix(record.ExpiresAt, 0))
	if record.ExpiresAt > 0 && remaining <= 0 {
		_ = s.redis.Del(ctx, s.accountKey(record.AccountID)).Err()
		return ErrPendingNotFound
	}
	if record.ExpiresAt == 0 {
		remaining = 0 // no expiry recorded; restore without TTL
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}
	if err := s.redis.Set(ctx, s.recordKey(recordID), data, remaining).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPendingRedisUnavailable, err)
	}

	return ErrPendingSecretMismatch
}
