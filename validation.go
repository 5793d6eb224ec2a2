package goSignup

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateCandidate performs the input shape validation the pipeline runs
// before touching any backend. A non-empty map means the attempt is a soft
// rejection: the caller re-displays the form with the field errors.
func validateCandidate(cand Candidate, channel Channel) map[string]string {
	fields := []*validation.FieldRules{
		validation.Field(&cand.Username,
			validation.Required,
			validation.Length(2, 30),
			validation.Match(usernamePattern),
		),
		validation.Field(&cand.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(&cand.Password,
			validation.Required,
			validation.Length(8, 512),
		),
	}
	if channel == ChannelWeb {
		fields = append(fields, validation.Field(&cand.CaptchaToken, validation.Required))
	}

	err := validation.ValidateStruct(&cand, fields...)
	if err == nil {
		return nil
	}

	fieldErrors := make(map[string]string)
	if verrs, ok := err.(validation.Errors); ok {
		for name, ferr := range verrs {
			fieldErrors[strings.ToLower(name)] = ferr.Error()
		}
		return fieldErrors
	}

	fieldErrors["candidate"] = err.Error()
	return fieldErrors
}

// stdEmailValidator is the default [EmailValidator]: syntax check plus
// normalization (trimmed, domain lowercased). Hosts with stricter rules
// (MX probing, disposable-domain lists) supply their own implementation.
type stdEmailValidator struct{}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (stdEmailValidator) Validate(raw string) (AcceptableEmail, error) {
	addr := strings.TrimSpace(raw)
	if err := validation.Validate(addr, validation.Required, is.Email); err != nil {
		return "", err
	}

	at := strings.LastIndex(addr, "@")
	local, domain := addr[:at], addr[at+1:]
	return AcceptableEmail(local + "@" + strings.ToLower(domain)), nil
}
