package stores

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *PendingSignupStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewPendingSignupStore(rdb, "sg:confirm")
}

func secretHash(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

func TestSaveAndConsume(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	record := &PendingSignup{
		AccountID:  "acct-1",
		SecretHash: secretHash("secret"),
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	}
	if err := store.Save(ctx, "rec-1", record, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Consume(ctx, "rec-1", secretHash("secret"), 3)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got.AccountID != "acct-1" {
		t.Fatalf("unexpected account ID %q", got.AccountID)
	}

	// The record is single use.
	if _, err := store.Consume(ctx, "rec-1", secretHash("secret"), 3); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected ErrPendingNotFound on replay, got %v", err)
	}

	// The account-side key is cleaned up with the record.
	pending, err := store.PendingByAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("PendingByAccount failed: %v", err)
	}
	if pending {
		t.Fatal("account key must be removed after a successful consume")
	}
}

func TestSaveReplacesEarlierRecordForAccount(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	first := &PendingSignup{AccountID: "acct-1", SecretHash: secretHash("one")}
	if err := store.Save(ctx, "rec-1", first, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := &PendingSignup{AccountID: "acct-1", SecretHash: secretHash("two")}
	if err := store.Save(ctx, "rec-2", second, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := store.Consume(ctx, "rec-1", secretHash("one"), 3); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected first record to be dropped, got %v", err)
	}
	if _, err := store.Consume(ctx, "rec-2", secretHash("two"), 3); err != nil {
		t.Fatalf("second record must remain consumable: %v", err)
	}
}

func TestConsumeSecretMismatchRestoresRecord(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	record := &PendingSignup{
		AccountID:  "acct-1",
		SecretHash: secretHash("secret"),
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	}
	if err := store.Save(ctx, "rec-1", record, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := store.Consume(ctx, "rec-1", secretHash("wrong"), 3); !errors.Is(err, ErrPendingSecretMismatch) {
		t.Fatalf("expected ErrPendingSecretMismatch, got %v", err)
	}

	// A mismatch must not burn the record.
	got, err := store.Consume(ctx, "rec-1", secretHash("secret"), 3)
	if err != nil {
		t.Fatalf("record must survive a single mismatch: %v", err)
	}
	if got.Attempts != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", got.Attempts)
	}
}

func TestConsumeAttemptBudget(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	record := &PendingSignup{
		AccountID:  "acct-1",
		SecretHash: secretHash("secret"),
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	}
	if err := store.Save(ctx, "rec-1", record, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := store.Consume(ctx, "rec-1", secretHash("wrong"), 2); !errors.Is(err, ErrPendingSecretMismatch) {
		t.Fatalf("expected ErrPendingSecretMismatch, got %v", err)
	}
	if _, err := store.Consume(ctx, "rec-1", secretHash("wrong"), 2); !errors.Is(err, ErrPendingAttemptsExceeded) {
		t.Fatalf("expected ErrPendingAttemptsExceeded, got %v", err)
	}

	// Budget exhaustion burns the record and the account key.
	if _, err := store.Consume(ctx, "rec-1", secretHash("secret"), 2); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected ErrPendingNotFound after exhaustion, got %v", err)
	}
	pending, err := store.PendingByAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("PendingByAccount failed: %v", err)
	}
	if pending {
		t.Fatal("account key must be removed after attempt exhaustion")
	}
}

func TestConsumeExpiredRecord(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	record := &PendingSignup{
		AccountID:  "acct-1",
		SecretHash: secretHash("secret"),
		ExpiresAt:  time.Now().Add(time.Minute).Unix(),
	}
	if err := store.Save(ctx, "rec-1", record, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Consume(ctx, "rec-1", secretHash("secret"), 3); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected ErrPendingNotFound for expired record, got %v", err)
	}
}

func TestConsumeWithoutStoredSecretSkipsComparison(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	// JWT-style records carry no stored hash; possession proof lives in
	// the token signature.
	record := &PendingSignup{
		AccountID: "acct-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	if err := store.Save(ctx, "rec-1", record, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Consume(ctx, "rec-1", nil, 3)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got.AccountID != "acct-1" {
		t.Fatalf("unexpected account ID %q", got.AccountID)
	}
}

func TestPendingByAccount(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	pending, err := store.PendingByAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("PendingByAccount failed: %v", err)
	}
	if pending {
		t.Fatal("no record saved yet")
	}

	record := &PendingSignup{AccountID: "acct-1", SecretHash: secretHash("secret")}
	if err := store.Save(ctx, "rec-1", record, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	pending, err = store.PendingByAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("PendingByAccount failed: %v", err)
	}
	if !pending {
		t.Fatal("expected a live record for the account")
	}
}

func TestConsumeRedisDown(t *testing.T) {
	mr, store := newTestStore(t)
	mr.Close()

	if _, err := store.Consume(context.Background(), "rec-1", secretHash("secret"), 3); !errors.Is(err, ErrPendingRedisUnavailable) {
		t.Fatalf("expected ErrPendingRedisUnavailable, got %v", err)
	}
}
