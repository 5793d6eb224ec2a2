package goSignup

import (
	"time"

	"github.com/MrEthical07/goSignup/internal/stores"
)

// Engine defines a public type used by goSignup APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config Config

	userStore      UserStore
	captcha        CaptchaVerifier
	emailValidator EmailValidator
	passwordHash   PasswordHasher
	history        IPHistoryStore
	reputation     IPReputationService
	userAgents     UserAgentClassifier
	mailer         ConfirmationMailer
	notifier       AbuseNotifier

	risk         *riskEvaluator
	limiter      *signupLimiter
	pendingStore *stores.PendingSignupStore
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}
