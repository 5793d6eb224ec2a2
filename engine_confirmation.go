package goSignup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSignup/internal"
	"github.com/MrEthical07/goSignup/internal/stores"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// decideConfirmation is the confirmation gate: it maps the created account
// and its confirmation requirement to the terminal Result. Pending-signup
// bookkeeping is persisted whenever confirmation is required, even when
// dispatch is disabled by deployment toggle; in that case the account is
// immediately usable and the attempt completes.
func (e *Engine) decideConfirmation(ctx context.Context, account Account, email AcceptableEmail, cand Candidate, mustConfirm bool, channel Channel) (Result, error) {
	if !mustConfirm {
		return Result{Kind: ResultComplete, Account: account, Email: email}, nil
	}

	token, err := e.issueConfirmation(ctx, account, cand)
	if err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, account.AccountID, cand.Username, channel, err, nil)
		return Result{}, err
	}

	if !e.config.Confirmation.Enabled {
		e.metricInc(MetricConfirmationSkipped)
		e.emitAudit(ctx, auditEventConfirmationSkipped, true, account.AccountID, cand.Username, channel, nil, func() map[string]string {
			return map[string]string{
				"reason": "feature_disabled",
			}
		})
		return Result{Kind: ResultComplete, Account: account, Email: email}, nil
	}

	if err := e.mailer.Send(ctx, account, email, token); err != nil {
		e.emitAudit(ctx, auditEventSignupFailure, false, account.AccountID, cand.Username, channel, ErrConfirmationUnavailable, nil)
		return Result{}, fmt.Errorf("%w: %v", ErrConfirmationUnavailable, err)
	}
	e.metricInc(MetricConfirmationSent)
	e.emitAudit(ctx, auditEventConfirmationSent, true, account.AccountID, cand.Username, channel, nil, nil)

	return Result{Kind: ResultPendingConfirmation, Account: account, Email: email}, nil
}

func (e *Engine) issueConfirmation(ctx context.Context, account Account, cand Candidate) (string, error) {
	recordID := uuid.New()
	record := &stores.PendingSignup{
		AccountID:       account.AccountID,
		APIVersion:      cand.APIVersion,
		FingerprintHash: internal.HashFingerprint(cand.Fingerprint),
		ExpiresAt:       time.Now().Add(e.config.Confirmation.TokenTTL).Unix(),
	}

	var token string
	switch e.config.Confirmation.Strategy {
	case ConfirmationTokenOpaque:
		secret, err := internal.NewSignupSecret()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrConfirmationUnavailable, err)
		}
		secretHash := internal.HashSignupSecret(secret)
		record.SecretHash = secretHash[:]
		token = internal.EncodeSignupToken([16]byte(recordID), secret)
	case ConfirmationTokenJWT:
		now := time.Now()
		claims := jwt.RegisteredClaims{
			ID:        recordID.String(),
			Subject:   account.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.config.Confirmation.TokenTTL)),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.config.Confirmation.SigningKey)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrConfirmationUnavailable, err)
		}
		token = signed
	default:
		return "", ErrConfirmationUnavailable
	}

	if err := e.pendingStore.Save(ctx, recordID.String(), record, e.config.Confirmation.TokenTTL); err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfirmationUnavailable, err)
	}

	return token, nil
}

// ConfirmSignup describes the confirmsignup operation and its observable behavior.
//
// ConfirmSignup may return an error when input validation, dependency calls, or security checks fail.
// ConfirmSignup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// On success it returns the ID of the account that is now fully usable.
// Tokens are single-use: a second confirmation with the same token fails
// with [ErrConfirmationInvalid].
func (e *Engine) ConfirmSignup(ctx context.Context, token string) (string, error) {
	if e == nil || e.pendingStore == nil || e.userStore == nil {
		return "", ErrEngineNotReady
	}
	if !e.config.Confirmation.Enabled {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmFailure, false, "", "", channelUnset, ErrConfirmationDisabled, nil)
		return "", ErrConfirmationDisabled
	}
	if token == "" {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmFailure, false, "", "", channelUnset, ErrConfirmationInvalid, func() map[string]string {
			return map[string]string{
				"reason": "empty_token",
			}
		})
		return "", ErrConfirmationInvalid
	}

	recordID, providedHash, subject, err := e.parseConfirmationToken(token)
	if err != nil {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmFailure, false, "", "", channelUnset, ErrConfirmationInvalid, func() map[string]string {
			return map[string]string{
				"reason": "parse_failed",
			}
		})
		return "", ErrConfirmationInvalid
	}

	record, err := e.pendingStore.Consume(ctx, recordID, providedHash, e.config.Confirmation.MaxAttempts)
	if err != nil {
		mapped := mapPendingStoreError(err)
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmFailure, false, "", "", channelUnset, mapped, nil)
		return "", mapped
	}

	// JWT subject must match the record; a mismatch means the token was
	// minted for a different account than the record it points at.
	if subject != "" && subject != record.AccountID {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmFailure, false, record.AccountID, "", channelUnset, ErrConfirmationInvalid, func() map[string]string {
			return map[string]string{
				"reason": "subject_mismatch",
			}
		})
		return "", ErrConfirmationInvalid
	}

	if err := e.userStore.ActivateUser(ctx, record.AccountID); err != nil {
		e.metricInc(MetricConfirmFailure)
		e.emitAudit(ctx, auditEventConfirmFailure, false, record.AccountID, "", channelUnset, err, nil)
		return "", err
	}

	e.metricInc(MetricConfirmSuccess)
	e.emitAudit(ctx, auditEventConfirmSuccess, true, record.AccountID, "", channelUnset, nil, func() map[string]string {
		meta := map[string]string{}
		if record.APIVersion != "" {
			meta["api_version"] = record.APIVersion
		}
		return meta
	})

	return record.AccountID, nil
}

func (e *Engine) parseConfirmationToken(token string) (recordID string, providedHash []byte, subject string, err error) {
	switch e.config.Confirmation.Strategy {
	case ConfirmationTokenOpaque:
		rawID, secret, derr := internal.DecodeSignupToken(token)
		if derr != nil {
			return "", nil, "", derr
		}
		secretHash := internal.HashSignupSecret(secret)
		return uuid.UUID(rawID).String(), secretHash[:], "", nil
	case ConfirmationTokenJWT:
		claims := &jwt.RegisteredClaims{}
		parsed, perr := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			return e.config.Confirmation.SigningKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if perr != nil || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
			return "", nil, "", ErrConfirmationInvalid
		}
		return claims.ID, nil, claims.Subject, nil
	default:
		return "", nil, "", ErrConfirmationInvalid
	}
}

func mapPendingStoreError(err error) error {
	switch {
	case errors.Is(err, stores.ErrPendingNotFound),
		errors.Is(err, stores.ErrPendingSecretMismatch):
		return ErrConfirmationInvalid
	case errors.Is(err, stores.ErrPendingAttemptsExceeded):
		return ErrConfirmationAttempts
	default:
		return fmt.Errorf("%w: %v", ErrConfirmationUnavailable, err)
	}
}
