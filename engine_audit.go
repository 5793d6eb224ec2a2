package goSignup

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventSignupRejected        = "signup_rejected"
	auditEventSignupCaptchaFailed   = "signup_captcha_failed"
	auditEventSignupRateLimited     = "signup_rate_limited"
	auditEventSignupValidationFatal = "signup_validation_fatal"
	auditEventSignupCreated         = "signup_created"
	auditEventSignupConflict        = "signup_conflict"
	auditEventSignupFailure         = "signup_failure"
	auditEventConfirmationSent      = "confirmation_sent"
	auditEventConfirmationSkipped   = "confirmation_skipped"
	auditEventConfirmSuccess        = "signup_confirm_success"
	auditEventConfirmFailure        = "signup_confirm_failure"
	auditEventAbuseNotifyFailed     = "abuse_notify_failed"
	auditEventRateLimitTriggered    = "rate_limit_triggered"
)

// AuditErrorCode defines a public type used by goSignup APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrRateLimited      AuditErrorCode = "rate_limited"
	auditErrValidationFatal  AuditErrorCode = "validation_fatal"
	auditErrPasswordPolicy   AuditErrorCode = "password_policy"
	auditErrDuplicate        AuditErrorCode = "duplicate"
	auditErrInvalidToken     AuditErrorCode = "invalid_token"
	auditErrAttemptsExceeded AuditErrorCode = "attempts_exceeded"
	auditErrDisabled         AuditErrorCode = "feature_disabled"
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

// channelUnset marks audit events that are not tied to a signup channel
// (token confirmation arrives over whatever transport the host exposes).
const channelUnset Channel = 0xFF

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	username string,
	channel Channel,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		Username:  username,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if channel != channelUnset {
		event.Channel = channel.String()
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	username string,
	channel Channel,
	metadataBuilder func() map[string]string,
) {
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", username, channel, nil, func() map[string]string {
		base := map[string]string{
			"scope": "signup",
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, errSignupRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrEmailValidationFatal):
		return auditErrValidationFatal
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrAccountExists),
		errors.Is(err, ErrStoreDuplicate):
		return auditErrDuplicate
	case errors.Is(err, ErrConfirmationInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrConfirmationAttempts):
		return auditErrAttemptsExceeded
	case errors.Is(err, ErrSignupDisabled),
		errors.Is(err, ErrConfirmationDisabled):
		return auditErrDisabled
	case errors.Is(err, ErrSignupUnavailable),
		errors.Is(err, ErrCaptchaUnavailable),
		errors.Is(err, ErrRiskUnavailable),
		errors.Is(err, ErrConfirmationUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
