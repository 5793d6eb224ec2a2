package internaldefs

import (
	goSignup "github.com/MrEthical07/goSignup"
)

// CounterDef defines a public type used by goSignup APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSignup.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSignup APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSignup.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the registration engine.
var CounterDefs = []CounterDef{
	{ID: goSignup.MetricSignupWebAttempt, Name: "gosignup_signup_web_attempt_total", Help: "Signup attempts arriving over the web channel."},
	{ID: goSignup.MetricSignupMobileAttempt, Name: "gosignup_signup_mobile_attempt_total", Help: "Signup attempts arriving over the mobile channel."},
	{ID: goSignup.MetricSignupRejected, Name: "gosignup_signup_rejected_total", Help: "Signup attempts rejected by field validation."},
	{ID: goSignup.MetricSignupCaptchaFailed, Name: "gosignup_signup_captcha_failed_total", Help: "Signup attempts rejected by captcha verification."},
	{ID: goSignup.MetricSignupRateLimited, Name: "gosignup_signup_rate_limited_total", Help: "Rate-limited signup attempts."},
	{ID: goSignup.MetricSignupValidationFatal, Name: "gosignup_signup_validation_fatal_total", Help: "Signup attempts aborted by fatal email validation."},
	{ID: goSignup.MetricSignupCreated, Name: "gosignup_signup_created_total", Help: "Successfully created accounts."},
	{ID: goSignup.MetricSignupConflict, Name: "gosignup_signup_conflict_total", Help: "Signup attempts rejected as duplicate accounts."},
	{ID: goSignup.MetricRiskNone, Name: "gosignup_risk_none_total", Help: "Signups classified with no risk signal."},
	{ID: goSignup.MetricRiskIPKnown, Name: "gosignup_risk_ip_known_total", Help: "Signups classified by a recently seen IP."},
	{ID: goSignup.MetricRiskIPSuspicious, Name: "gosignup_risk_ip_suspicious_total", Help: "Signups classified by IP reputation."},
	{ID: goSignup.MetricRiskFingerprintKnown, Name: "gosignup_risk_fingerprint_known_total", Help: "Signups classified by a recently seen fingerprint."},
	{ID: goSignup.MetricRiskFingerprintMissing, Name: "gosignup_risk_fingerprint_missing_total", Help: "Signups classified by a missing fingerprint."},
	{ID: goSignup.MetricRiskSuspiciousUserAgent, Name: "gosignup_risk_suspicious_user_agent_total", Help: "Signups classified by a suspicious user agent."},
	{ID: goSignup.MetricRiskMobileClient, Name: "gosignup_risk_mobile_client_total", Help: "Signups classified as mobile clients."},
	{ID: goSignup.MetricConfirmationSent, Name: "gosignup_confirmation_sent_total", Help: "Confirmation emails dispatched."},
	{ID: goSignup.MetricConfirmationSkipped, Name: "gosignup_confirmation_skipped_total", Help: "Confirmations skipped because the feature is disabled."},
	{ID: goSignup.MetricConfirmSuccess, Name: "gosignup_confirm_success_total", Help: "Successful signup confirmations."},
	{ID: goSignup.MetricConfirmFailure, Name: "gosignup_confirm_failure_total", Help: "Failed signup confirmations."},
}

// HistogramDefs is an exported constant or variable used by the registration engine.
var HistogramDefs = []HistogramDef{
	{ID: goSignup.MetricRegisterLatency, Name: "gosignup_register_latency_seconds", Help: "Register latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the registration engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the registration engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
