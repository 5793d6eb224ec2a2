package goSignup

import (
	"errors"
	"time"
)

// Config defines a public type used by goSignup APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Signup       SignupConfig
	Confirmation ConfirmationConfig
	Password     PasswordConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
SIGNUP CONFIG
====================================
*/

// SignupConfig defines a public type used by goSignup APIs.
//
// SignupConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignupConfig struct {
	Enabled bool

	// Enforce toggles rate limiting. When false the limiter is a pass-through
	// and every attempt is admitted; counters are not touched.
	Enforce                  bool
	EnableIdentifierThrottle bool
	EnableIPThrottle         bool
	MaxAttempts              int
	Cooldown                 time.Duration
	RedisPrefix              string
}

/*
====================================
CONFIRMATION CONFIG
====================================
*/

// ConfirmationStrategy defines a public type used by goSignup APIs.
//
// ConfirmationStrategy instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ConfirmationStrategy int

const (
	// ConfirmationTokenOpaque is an exported constant or variable used by the registration engine.
	ConfirmationTokenOpaque ConfirmationStrategy = iota
	// ConfirmationTokenJWT is an exported constant or variable used by the registration engine.
	ConfirmationTokenJWT
)

// ConfirmationConfig defines a public type used by goSignup APIs.
//
// ConfirmationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// When Enabled is false and an attempt still requires confirmation, the
// pending-signup record is persisted for parity and telemetry but no mail is
// dispatched and the attempt completes immediately.
type ConfirmationConfig struct {
	Enabled     bool
	Strategy    ConfirmationStrategy
	TokenTTL    time.Duration
	MaxAttempts int
	RedisPrefix string

	// SigningKey is required for ConfirmationTokenJWT (HS256).
	SigningKey []byte
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by goSignup APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AuditConfig defines a public type used by goSignup APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSignup APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Signup: SignupConfig{
			Enabled:                  true,
			Enforce:                  true,
			EnableIdentifierThrottle: true,
			EnableIPThrottle:         true,
			MaxAttempts:              5,
			Cooldown:                 15 * time.Minute,
			RedisPrefix:              "sg",
		},
		Confirmation: ConfirmationConfig{
			Enabled:     true,
			Strategy:    ConfirmationTokenOpaque,
			TokenTTL:    24 * time.Hour,
			MaxAttempts: 5,
			RedisPrefix: "sgp",
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Confirmation.SigningKey = cloneBytes(cfg.Confirmation.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Signup
	if c.Signup.Enforce {
		if c.Signup.MaxAttempts <= 0 {
			return errors.New("Signup MaxAttempts must be > 0 when Enforce is true")
		}
		if c.Signup.Cooldown <= 0 {
			return errors.New("Signup Cooldown must be > 0 when Enforce is true")
		}
		if !c.Signup.EnableIdentifierThrottle && !c.Signup.EnableIPThrottle {
			return errors.New("Signup Enforce requires at least one throttle dimension")
		}
	}
	if c.Signup.RedisPrefix == "" {
		return errors.New("Signup RedisPrefix must not be empty")
	}

	// Confirmation
	if c.Confirmation.TokenTTL <= 0 {
		return errors.New("Confirmation TokenTTL must be > 0")
	}
	if c.Confirmation.MaxAttempts <= 0 {
		return errors.New("Confirmation MaxAttempts must be > 0")
	}
	if c.Confirmation.RedisPrefix == "" {
		return errors.New("Confirmation RedisPrefix must not be empty")
	}
	switch c.Confirmation.Strategy {
	case ConfirmationTokenOpaque:
	case ConfirmationTokenJWT:
		if len(c.Confirmation.SigningKey) < 32 {
			return errors.New("Confirmation SigningKey must be >= 32 bytes for the JWT strategy")
		}
	default:
		return errors.New("unsupported confirmation strategy")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	return nil
}
