package goSignup

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the registration engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrSignupDisabled is an exported constant or variable used by the registration engine.
	ErrSignupDisabled = errors.New("signup disabled")
	// ErrSignupUnavailable is an exported constant or variable used by the registration engine.
	ErrSignupUnavailable = errors.New("signup backend unavailable")
	// ErrCaptchaUnavailable is an exported constant or variable used by the registration engine.
	ErrCaptchaUnavailable = errors.New("captcha verifier unavailable")
	// ErrEmailValidationFatal is an exported constant or variable used by the registration engine.
	ErrEmailValidationFatal = errors.New("email failed validation after form acceptance")
	// ErrPasswordPolicy is an exported constant or variable used by the registration engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrRiskUnavailable is an exported constant or variable used by the registration engine.
	ErrRiskUnavailable = errors.New("risk backend unavailable")
	// ErrAccountExists is an exported constant or variable used by the registration engine.
	ErrAccountExists = errors.New("account already exists")
	// ErrStoreDuplicate is an exported constant or variable used by the registration engine.
	ErrStoreDuplicate = errors.New("store duplicate username or email")
	// ErrConfirmationDisabled is an exported constant or variable used by the registration engine.
	ErrConfirmationDisabled = errors.New("email confirmation disabled")
	// ErrConfirmationInvalid is an exported constant or variable used by the registration engine.
	ErrConfirmationInvalid = errors.New("confirmation token invalid")
	// ErrConfirmationAttempts is an exported constant or variable used by the registration engine.
	ErrConfirmationAttempts = errors.New("confirmation attempts exceeded")
	// ErrConfirmationUnavailable is an exported constant or variable used by the registration engine.
	ErrConfirmationUnavailable = errors.New("confirmation backend unavailable")
)
