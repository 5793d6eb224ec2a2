package goSignup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goSignup/internal"
)

// RegisterWeb describes the registerweb operation and its observable behavior.
//
// RegisterWeb may return an error when input validation, dependency calls, or security checks fail.
// RegisterWeb does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RegisterWeb(ctx context.Context, cand Candidate) (Result, error) {
	return e.register(ctx, cand, ChannelWeb)
}

// RegisterMobile describes the registermobile operation and its observable behavior.
//
// RegisterMobile may return an error when input validation, dependency calls, or security checks fail.
// RegisterMobile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RegisterMobile(ctx context.Context, cand Candidate) (Result, error) {
	return e.register(ctx, cand, ChannelMobile)
}

func (e *Engine) register(ctx context.Context, cand Candidate, channel Channel) (Result, error) {
	if e == nil || e.userStore == nil || e.limiter == nil || e.passwordHash == nil ||
		e.emailValidator == nil || e.risk == nil || e.pendingStore == nil {
		return Result{}, ErrEngineNotReady
	}
	if !e.config.Signup.Enabled {
		e.emitAudit(ctx, auditEventSignupFailure, false, "", cand.Username, channel, ErrSignupDisabled, func() map[string]string {
			return map[string]string{
				"reason": "feature_disabled",
			}
		})
		return Result{}, ErrSignupDisabled
	}

	start := time.Now()
	defer func() {
		e.metricObserve(MetricRegisterLatency, time.Since(start))
	}()

	// Step 1: input shape. Failure is a soft rejection; nothing downstream runs.
	if fieldErrors := validateCandidate(cand, channel); len(fieldErrors) > 0 {
		e.metricInc(MetricSignupRejected)
		e.emitAudit(ctx, auditEventSignupRejected, false, "", cand.Username, channel, nil, func() map[string]string {
			return map[string]string{
				"fields": strings.Join(fieldErrorNames(fieldErrors), ","),
			}
		})
		return Result{Kind: ResultRejected, FieldErrors: fieldErrors}, nil
	}

	clientIP := clientIPFromContext(ctx)

	// Step 2: captcha, web only. Runs before admission so a failed captcha
	// never consumes rate-limit budget.
	if channel == ChannelWeb {
		ok, err := e.captcha.Verify(ctx, cand.CaptchaToken, clientIP)
		if err != nil {
			e.emitAudit(ctx, auditEventSignupFailure, false, "", cand.Username, channel, ErrCaptchaUnavailable, nil)
			return Result{}, fmt.Errorf("%w: %v", ErrCaptchaUnavailable, err)
		}
		if !ok {
			e.metricInc(MetricSignupCaptchaFailed)
			e.emitAudit(ctx, auditEventSignupCaptchaFailed, false, "", cand.Username, channel, nil, nil)
			return Result{
				Kind:        ResultRejected,
				FieldErrors: map[string]string{"captcha": "captcha verification failed"},
			}, nil
		}
	}

	// Step 3: rate-limit admission. Rejection short-circuits before email
	// validation, hashing, risk evaluation, and creation.
	if err := e.limiter.Admit(ctx, cand.Username, clientIP); err != nil {
		if errors.Is(err, errSignupRateLimited) {
			e.metricInc(MetricSignupRateLimited)
			e.emitAudit(ctx, auditEventSignupRateLimited, false, "", cand.Username, channel, err, nil)
			e.emitRateLimit(ctx, cand.Username, channel, nil)
			return Result{Kind: ResultRateLimited}, nil
		}
		e.emitAudit(ctx, auditEventSignupFailure, false, "", cand.Username, channel, ErrSignupUnavailable, nil)
		return Result{}, fmt.Errorf("%w: %v", ErrSignupUnavailable, err)
	}

	// Step 4: email normalization. The form already accepted this input, so a
	// failure here is an upstream invariant violation, not a soft rejection.
	email, err := e.emailValidator.Validate(cand.Email)
	if err != nil {
		e.metricInc(MetricSignupValidationFatal)
		e.emitAudit(ctx, auditEventSignupValidationFatal, false, "", cand.Username, channel, ErrEmailValidationFatal, func() map[string]string {
			return map[string]string{
				"raw_email": cand.Email,
			}
		})
		return Result{}, fmt.Errorf("%w: %v", ErrEmailValidationFatal, err)
	}

	// Step 5: hashing, the expensive operation the limiter protects.
	hash, err := e.passwordHash.Hash(cand.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, "", cand.Username, channel, ErrPasswordPolicy, nil)
		return Result{}, ErrPasswordPolicy
	}
	cand.Password = ""

	// Step 6: risk classification. Mobile clients cannot supply a
	// fingerprint, so that channel bypasses the evaluator entirely.
	reason := RiskMobileClient
	if channel == ChannelWeb {
		reason, err = e.risk.Evaluate(ctx, clientIP, cand.Fingerprint, userAgentFromContext(ctx))
		if err != nil {
			e.emitAudit(ctx, auditEventSignupFailure, false, "", cand.Username, channel, err, nil)
			return Result{}, err
		}
	}
	e.metricInc(channelMetric(channel))
	e.metricInc(riskMetric(reason))

	// Step 7: atomic account creation, at most once per attempt.
	account, err := e.userStore.CreateUser(ctx, CreateUserInput{
		Username:         cand.Username,
		PasswordHash:     hash,
		Email:            email,
		BlindAccessible:  cand.BlindAccessible,
		APIVersion:       cand.APIVersion,
		MustConfirmEmail: reason.MustConfirm(),
	})
	if err != nil {
		if errors.Is(err, ErrStoreDuplicate) || errors.Is(err, ErrAccountExists) {
			e.metricInc(MetricSignupConflict)
			e.emitAudit(ctx, auditEventSignupConflict, false, "", cand.Username, channel, ErrAccountExists, nil)
			return Result{}, ErrAccountExists
		}
		e.emitAudit(ctx, auditEventSignupFailure, false, "", cand.Username, channel, err, nil)
		return Result{}, err
	}
	e.metricInc(MetricSignupCreated)

	// Step 8: side effects. They run to completion even if the caller has
	// disconnected and never alter the Result.
	detached := context.WithoutCancel(ctx)
	e.emitAudit(detached, auditEventSignupCreated, true, account.AccountID, cand.Username, channel, nil, func() map[string]string {
		return map[string]string{
			"risk_reason":  reason.String(),
			"must_confirm": strconv.FormatBool(reason.MustConfirm()),
		}
	})
	e.notifyAbuse(detached, account, email, clientIP, cand, reason, channel)

	// Step 9: confirmation gate decides the terminal Result.
	return e.decideConfirmation(ctx, account, email, cand, reason.MustConfirm(), channel)
}

func (e *Engine) notifyAbuse(ctx context.Context, account Account, email AcceptableEmail, ip string, cand Candidate, reason RiskReason, channel Channel) {
	if e.notifier == nil {
		return
	}

	// The notifier gets its own reputation verdict, independent of whatever
	// the risk evaluator concluded (which may have short-circuited earlier).
	suspicious, err := e.reputation.IsSuspicious(ctx, ip)
	if err != nil {
		suspicious = reason == RiskIPSuspicious
	}

	report := AbuseReport{
		AccountID:       account.AccountID,
		Username:        cand.Username,
		Email:           email,
		IP:              ip,
		FingerprintHash: internal.HashFingerprint(cand.Fingerprint),
		APIVersion:      cand.APIVersion,
		Suspicious:      suspicious,
	}
	if err := e.notifier.Notify(ctx, report); err != nil {
		e.emitAudit(ctx, auditEventAbuseNotifyFailed, false, account.AccountID, cand.Username, channel, nil, func() map[string]string {
			return map[string]string{
				"notify_error": err.Error(),
			}
		})
	}
}

func fieldErrorNames(fieldErrors map[string]string) []string {
	names := make([]string, 0, len(fieldErrors))
	for name := range fieldErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
