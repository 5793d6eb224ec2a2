package goSignup

import (
	"context"
)

// Channel identifies which client surface submitted a registration attempt.
//
//	Docs: docs/engine.md
type Channel uint8

const (
	// ChannelWeb is an exported constant or variable used by the registration engine.
	ChannelWeb Channel = iota
	// ChannelMobile is an exported constant or variable used by the registration engine.
	ChannelMobile
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Channel) String() string {
	switch c {
	case ChannelWeb:
		return "web"
	case ChannelMobile:
		return "mobile"
	default:
		return "unknown"
	}
}

// Candidate is the unvalidated signup attempt submitted by a client.
// The cleartext password is never persisted; it is discarded as soon as the
// hash is computed. Fingerprint and APIVersion are optional (mobile clients
// set APIVersion and cannot supply a fingerprint).
//
//	Docs: docs/engine.md, docs/risk.md
type Candidate struct {
	Username        string
	Password        string
	Email           string
	Fingerprint     string
	APIVersion      string
	BlindAccessible bool
	CaptchaToken    string
}

// AcceptableEmail is a validated, normalized email address, distinct from the
// raw string a client submitted. Only [EmailValidator] produces values of
// this type.
type AcceptableEmail string

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e AcceptableEmail) String() string { return string(e) }

// Account is the opaque identity returned by account creation. It carries the
// confirmation requirement that was recorded at creation time.
type Account struct {
	AccountID        string
	Username         string
	MustConfirmEmail bool
}

// CreateUserInput defines a public type used by goSignup APIs.
//
// CreateUserInput instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CreateUserInput struct {
	Username         string
	PasswordHash     string
	Email            AcceptableEmail
	BlindAccessible  bool
	APIVersion       string
	MustConfirmEmail bool
}

// ResultKind defines a public type used by goSignup APIs.
//
// ResultKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResultKind uint8

const (
	// ResultRejected is an exported constant or variable used by the registration engine.
	ResultRejected ResultKind = iota
	// ResultRateLimited is an exported constant or variable used by the registration engine.
	ResultRateLimited
	// ResultPendingConfirmation is an exported constant or variable used by the registration engine.
	ResultPendingConfirmation
	// ResultComplete is an exported constant or variable used by the registration engine.
	ResultComplete
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k ResultKind) String() string {
	switch k {
	case ResultRejected:
		return "rejected"
	case ResultRateLimited:
		return "rate_limited"
	case ResultPendingConfirmation:
		return "pending_confirmation"
	case ResultComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Result is the terminal outcome of one registration attempt.
// Account and Email are set for PendingConfirmation and Complete;
// FieldErrors is set for Rejected.
//
//	Docs: docs/engine.md
type Result struct {
	Kind        ResultKind
	Account     Account
	Email       AcceptableEmail
	FieldErrors map[string]string
}

// AbuseReport is handed to an [AbuseNotifier] after an account has been
// created. The fingerprint is hashed before it leaves the engine.
type AbuseReport struct {
	AccountID       string
	Username        string
	Email           AcceptableEmail
	IP              string
	FingerprintHash string
	APIVersion      string
	Suspicious      bool
}

// UserStore is the persistent account store contract. CreateUser must be
// atomic: on return the account is either fully present or absent. A
// uniqueness collision on username or email must surface as an error
// wrapping [ErrStoreDuplicate].
//
//	Docs: docs/engine.md, docs/usage.md
type UserStore interface {
	CreateUser(ctx context.Context, input CreateUserInput) (Account, error)
	ActivateUser(ctx context.Context, accountID string) error
}

// CaptchaVerifier checks a captcha response token for web signups.
//
//	Docs: docs/engine.md
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// EmailValidator validates and normalizes a raw email string. A failure at
// this layer after the form already accepted the input is an upstream
// invariant violation; the engine escalates it as [ErrEmailValidationFatal].
type EmailValidator interface {
	Validate(raw string) (AcceptableEmail, error)
}

// PasswordHasher computes the password hash stored with the account. Hashing
// is the expensive operation the signup rate limiter protects; the engine
// calls Hash only after captcha and rate-limit admission.
type PasswordHasher interface {
	Hash(cleartext string) (string, error)
}

// IPHistoryStore answers read-only lookups against recent-signup history.
// Implementations must never mutate history as a side effect of a lookup.
//
//	Docs: docs/risk.md
type IPHistoryStore interface {
	RecentSignupByIP(ctx context.Context, ip string) (bool, error)
	RecentSignupByFingerprint(ctx context.Context, fingerprint string) (bool, error)
}

// IPReputationService is the external reputation check consulted as the last
// and most expensive step of risk evaluation.
//
//	Docs: docs/risk.md
type IPReputationService interface {
	IsSuspicious(ctx context.Context, ip string) (bool, error)
}

// UserAgentClassifier flags anomalous user-agent strings. It is synchronous
// and must be cheap; it runs before any fingerprint or reputation I/O.
type UserAgentClassifier interface {
	IsWeird(userAgent string) bool
}

// ConfirmationMailer delivers the confirmation message. The engine owns
// token issuance and pending-signup bookkeeping; the mailer owns transport
// and templating.
//
//	Docs: docs/confirmation.md
type ConfirmationMailer interface {
	Send(ctx context.Context, account Account, email AcceptableEmail, token string) error
}

// AbuseNotifier receives best-effort notifications about created accounts.
// Errors are audited and swallowed; they never alter the attempt's Result.
type AbuseNotifier interface {
	Notify(ctx context.Context, report AbuseReport) error
}
