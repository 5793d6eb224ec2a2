package goSignup

import (
	"context"
	"fmt"
)

// RiskReason is the classification code explaining why (or why not) email
// confirmation is required for a signup attempt. Exactly one reason is
// selected per attempt; evaluation is first-match and later checks never run
// once a reason is found.
//
//	Docs: docs/risk.md
type RiskReason uint8

const (
	// RiskNone is an exported constant or variable used by the registration engine.
	RiskNone RiskReason = iota
	// RiskIPKnown is an exported constant or variable used by the registration engine.
	RiskIPKnown
	// RiskIPSuspicious is an exported constant or variable used by the registration engine.
	RiskIPSuspicious
	// RiskFingerprintKnown is an exported constant or variable used by the registration engine.
	RiskFingerprintKnown
	// RiskFingerprintMissing is an exported constant or variable used by the registration engine.
	RiskFingerprintMissing
	// RiskSuspiciousUserAgent is an exported constant or variable used by the registration engine.
	RiskSuspiciousUserAgent
	// RiskMobileClient is an exported constant or variable used by the registration engine.
	RiskMobileClient
)

// MustConfirm reports whether this reason requires the account to pass email
// confirmation before becoming usable. It is the only source of that flag;
// callers must never set it independently.
func (r RiskReason) MustConfirm() bool {
	return r != RiskNone
}

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r RiskReason) String() string {
	switch r {
	case RiskNone:
		return "none"
	case RiskIPKnown:
		return "ip_known"
	case RiskIPSuspicious:
		return "ip_suspicious"
	case RiskFingerprintKnown:
		return "fingerprint_known"
	case RiskFingerprintMissing:
		return "fingerprint_missing"
	case RiskSuspiciousUserAgent:
		return "suspicious_user_agent"
	case RiskMobileClient:
		return "mobile_client"
	default:
		return "unknown"
	}
}

// riskEvaluator classifies web signup attempts. Checks are ordered by cost:
// the history lookups are cheap, the reputation query is a remote call and
// only runs when nothing earlier matched. Mobile attempts never reach the
// evaluator; the engine forces RiskMobileClient for that channel.
type riskEvaluator struct {
	history    IPHistoryStore
	userAgents UserAgentClassifier
	reputation IPReputationService
}

func newRiskEvaluator(history IPHistoryStore, userAgents UserAgentClassifier, reputation IPReputationService) *riskEvaluator {
	return &riskEvaluator{
		history:    history,
		userAgents: userAgents,
		reputation: reputation,
	}
}

// Evaluate runs the ordered, short-circuiting policy. Lookup failures
// escalate: a silent pass would disable the abuse controls.
func (r *riskEvaluator) Evaluate(ctx context.Context, ip, fingerprint, userAgent string) (RiskReason, error) {
	known, err := r.history.RecentSignupByIP(ctx, ip)
	if err != nil {
		return RiskNone, fmt.Errorf("%w: %v", ErrRiskUnavailable, err)
	}
	if known {
		return RiskIPKnown, nil
	}

	if r.userAgents.IsWeird(userAgent) {
		return RiskSuspiciousUserAgent, nil
	}

	if fingerprint == "" {
		return RiskFingerprintMissing, nil
	}

	known, err = r.history.RecentSignupByFingerprint(ctx, fingerprint)
	if err != nil {
		return RiskNone, fmt.Errorf("%w: %v", ErrRiskUnavailable, err)
	}
	if known {
		return RiskFingerprintKnown, nil
	}

	suspicious, err := r.reputation.IsSuspicious(ctx, ip)
	if err != nil {
		return RiskNone, fmt.Errorf("%w: %v", ErrRiskUnavailable, err)
	}
	if suspicious {
		return RiskIPSuspicious, nil
	}

	return RiskNone, nil
}
