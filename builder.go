package goSignup

import (
	"errors"

	"github.com/MrEthical07/goSignup/internal/stores"
	"github.com/MrEthical07/goSignup/password"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goSignup APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	userStore      UserStore
	captcha        CaptchaVerifier
	emailValidator EmailValidator
	passwordHash   PasswordHasher
	history        IPHistoryStore
	reputation     IPReputationService
	userAgents     UserAgentClassifier
	mailer         ConfirmationMailer
	notifier       AbuseNotifier
	auditSink      AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserStore describes the withuserstore operation and its observable behavior.
//
// WithUserStore may return an error when input validation, dependency calls, or security checks fail.
// WithUserStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.userStore = store
	return b
}

// WithCaptchaVerifier describes the withcaptchaverifier operation and its observable behavior.
//
// WithCaptchaVerifier may return an error when input validation, dependency calls, or security checks fail.
// WithCaptchaVerifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCaptchaVerifier(verifier CaptchaVerifier) *Builder {
	b.captcha = verifier
	return b
}

// WithEmailValidator describes the withemailvalidator operation and its observable behavior.
//
// WithEmailValidator may return an error when input validation, dependency calls, or security checks fail.
// WithEmailValidator does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEmailValidator(validator EmailValidator) *Builder {
	b.emailValidator = validator
	return b
}

// WithPasswordHasher describes the withpasswordhasher operation and its observable behavior.
//
// WithPasswordHasher may return an error when input validation, dependency calls, or security checks fail.
// WithPasswordHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPasswordHasher(hasher PasswordHasher) *Builder {
	b.passwordHash = hasher
	return b
}

// WithHistoryStore describes the withhistorystore operation and its observable behavior.
//
// WithHistoryStore may return an error when input validation, dependency calls, or security checks fail.
// WithHistoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHistoryStore(store IPHistoryStore) *Builder {
	b.history = store
	return b
}

// WithReputationService describes the withreputationservice operation and its observable behavior.
//
// WithReputationService may return an error when input validation, dependency calls, or security checks fail.
// WithReputationService does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithReputationService(service IPReputationService) *Builder {
	b.reputation = service
	return b
}

// WithUserAgentClassifier describes the withuseragentclassifier operation and its observable behavior.
//
// WithUserAgentClassifier may return an error when input validation, dependency calls, or security checks fail.
// WithUserAgentClassifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserAgentClassifier(classifier UserAgentClassifier) *Builder {
	b.userAgents = classifier
	return b
}

// WithConfirmationMailer describes the withconfirmationmailer operation and its observable behavior.
//
// WithConfirmationMailer may return an error when input validation, dependency calls, or security checks fail.
// WithConfirmationMailer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfirmationMailer(mailer ConfirmationMailer) *Builder {
	b.mailer = mailer
	return b
}

// WithAbuseNotifier describes the withabusenotifier operation and its observable behavior.
//
// WithAbuseNotifier may return an error when input validation, dependency calls, or security checks fail.
// WithAbuseNotifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAbuseNotifier(notifier AbuseNotifier) *Builder {
	b.notifier = notifier
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.userStore == nil {
		return nil, errors.New("user store required")
	}
	if b.captcha == nil {
		return nil, errors.New("captcha verifier required")
	}
	if b.history == nil {
		return nil, errors.New("ip history store required")
	}
	if b.reputation == nil {
		return nil, errors.New("ip reputation service required")
	}
	if b.userAgents == nil {
		return nil, errors.New("user agent classifier required")
	}
	if cfg.Confirmation.Enabled && b.mailer == nil {
		return nil, errors.New("confirmation mailer required when confirmation is enabled")
	}

	engine := &Engine{
		config:     cfg,
		userStore:  b.userStore,
		captcha:    b.captcha,
		history:    b.history,
		reputation: b.reputation,
		userAgents: b.userAgents,
		mailer:     b.mailer,
		notifier:   b.notifier,
	}

	engine.emailValidator = b.emailValidator
	if engine.emailValidator == nil {
		engine.emailValidator = stdEmailValidator{}
	}

	engine.passwordHash = b.passwordHash
	if engine.passwordHash == nil {
		ph, err := password.NewArgon2(password.Config{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
		engine.passwordHash = ph
	}

	engine.risk = newRiskEvaluator(b.history, b.userAgents, b.reputation)
	engine.limiter = newSignupLimiter(b.redis, cfg.Signup)
	engine.pendingStore = stores.NewPendingSignupStore(b.redis, cfg.Confirmation.RedisPrefix)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
