package goSignup

import (
	"context"
	"errors"
	"testing"
)

func TestRiskMustConfirmOnlyNoneIsClean(t *testing.T) {
	reasons := []RiskReason{
		RiskIPKnown,
		RiskIPSuspicious,
		RiskFingerprintKnown,
		RiskFingerprintMissing,
		RiskSuspiciousUserAgent,
		RiskMobileClient,
	}

	if RiskNone.MustConfirm() {
		t.Fatal("RiskNone must not require confirmation")
	}
	for _, r := range reasons {
		if !r.MustConfirm() {
			t.Fatalf("%v must require confirmation", r)
		}
	}
}

func TestRiskEvaluateIPKnownWinsOverEverything(t *testing.T) {
	history := &mockHistory{ipKnown: true, fingerprintKnown: true}
	userAgents := &mockUserAgents{weird: true}
	reputation := &mockReputation{suspicious: true}
	eval := newRiskEvaluator(history, userAgents, reputation)

	reason, err := eval.Evaluate(context.Background(), "203.0.113.5", "", "curl/8.0")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if reason != RiskIPKnown {
		t.Fatalf("expected RiskIPKnown, got %v", reason)
	}
	if history.fpCalls != 0 {
		t.Fatal("ip_known must short-circuit before fingerprint lookup")
	}
	if reputation.calls != 0 {
		t.Fatal("ip_known must short-circuit before reputation lookup")
	}
}

func TestRiskEvaluateSuspiciousUserAgentBeforeFingerprint(t *testing.T) {
	history := &mockHistory{}
	userAgents := &mockUserAgents{weird: true}
	reputation := &mockReputation{}
	eval := newRiskEvaluator(history, userAgents, reputation)

	reason, err := eval.Evaluate(context.Background(), "203.0.113.5", "", "curl/8.0")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if reason != RiskSuspiciousUserAgent {
		t.Fatalf("expected RiskSuspiciousUserAgent, got %v", reason)
	}
	if history.fpCalls != 0 || reputation.calls != 0 {
		t.Fatal("suspicious user agent must short-circuit later checks")
	}
}

func TestRiskEvaluateFingerprintMissing(t *testing.T) {
	history := &mockHistory{}
	eval := newRiskEvaluator(history, &mockUserAgents{}, &mockReputation{})

	reason, err := eval.Evaluate(context.Background(), "203.0.113.5", "", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if reason != RiskFingerprintMissing {
		t.Fatalf("expected RiskFingerprintMissing, got %v", reason)
	}
	if history.fpCalls != 0 {
		t.Fatal("missing fingerprint must not be looked up")
	}
}

func TestRiskEvaluateFingerprintKnown(t *testing.T) {
	history := &mockHistory{fingerprintKnown: true}
	reputation := &mockReputation{suspicious: true}
	eval := newRiskEvaluator(history, &mockUserAgents{}, reputation)

	reason, err := eval.Evaluate(context.Background(), "203.0.113.5", "fp123", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if reason != RiskFingerprintKnown {
		t.Fatalf("expected RiskFingerprintKnown, got %v", reason)
	}
	if reputation.calls != 0 {
		t.Fatal("known fingerprint must short-circuit before reputation lookup")
	}
}

func TestRiskEvaluateReputationLast(t *testing.T) {
	reputation := &mockReputation{suspicious: true}
	eval := newRiskEvaluator(&mockHistory{}, &mockUserAgents{}, reputation)

	reason, err := eval.Evaluate(context.Background(), "198.51.100.9", "fp123", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if reason != RiskIPSuspicious {
		t.Fatalf("expected RiskIPSuspicious, got %v", reason)
	}
	if reputation.calls != 1 {
		t.Fatalf("expected exactly one reputation lookup, got %d", reputation.calls)
	}
}

func TestRiskEvaluateCleanAttempt(t *testing.T) {
	eval := newRiskEvaluator(&mockHistory{}, &mockUserAgents{}, &mockReputation{})

	reason, err := eval.Evaluate(context.Background(), "203.0.113.5", "fp123", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if reason != RiskNone {
		t.Fatalf("expected RiskNone, got %v", reason)
	}
}

func TestRiskEvaluateLookupErrorsEscalate(t *testing.T) {
	history := &mockHistory{ipErr: errors.New("store down")}
	eval := newRiskEvaluator(history, &mockUserAgents{}, &mockReputation{})

	_, err := eval.Evaluate(context.Background(), "203.0.113.5", "fp123", "Mozilla/5.0")
	if !errors.Is(err, ErrRiskUnavailable) {
		t.Fatalf("expected ErrRiskUnavailable, got %v", err)
	}
}

func TestRiskEvaluateReputationErrorEscalates(t *testing.T) {
	reputation := &mockReputation{err: errors.New("reputation timeout")}
	eval := newRiskEvaluator(&mockHistory{}, &mockUserAgents{}, reputation)

	_, err := eval.Evaluate(context.Background(), "203.0.113.5", "fp123", "Mozilla/5.0")
	if !errors.Is(err, ErrRiskUnavailable) {
		t.Fatalf("expected ErrRiskUnavailable, got %v", err)
	}
}

func TestRiskReasonStrings(t *testing.T) {
	cases := map[RiskReason]string{
		RiskNone:                "none",
		RiskIPKnown:             "ip_known",
		RiskIPSuspicious:        "ip_suspicious",
		RiskFingerprintKnown:    "fingerprint_known",
		RiskFingerprintMissing:  "fingerprint_missing",
		RiskSuspiciousUserAgent: "suspicious_user_agent",
		RiskMobileClient:        "mobile_client",
	}

	for reason, want := range cases {
		if got := reason.String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", reason, got, want)
		}
	}
}
