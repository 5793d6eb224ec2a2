package goSignup

import (
	"strings"
	"testing"
)

func TestValidateCandidateAcceptsWellFormedWebAttempt(t *testing.T) {
	if errs := validateCandidate(validWebCandidate(), ChannelWeb); len(errs) != 0 {
		t.Fatalf("expected no field errors, got %v", errs)
	}
}

func TestValidateCandidateUsernameRules(t *testing.T) {
	cases := []struct {
		name     string
		username string
	}{
		{"empty", ""},
		{"too_short", "x"},
		{"too_long", strings.Repeat("a", 31)},
		{"bad_chars", "alice!"},
		{"spaces", "alice smith"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cand := validWebCandidate()
			cand.Username = tc.username
			errs := validateCandidate(cand, ChannelWeb)
			if _, ok := errs["username"]; !ok {
				t.Fatalf("expected username error for %q, got %v", tc.username, errs)
			}
		})
	}
}

func TestValidateCandidatePasswordBounds(t *testing.T) {
	cand := validWebCandidate()
	cand.Password = "short"
	if errs := validateCandidate(cand, ChannelWeb); errs["password"] == "" {
		t.Fatalf("expected password error, got %v", errs)
	}

	cand.Password = strings.Repeat("p", 513)
	if errs := validateCandidate(cand, ChannelWeb); errs["password"] == "" {
		t.Fatalf("expected password length cap error, got %v", errs)
	}

	cand.Password = strings.Repeat("p", 512)
	if errs := validateCandidate(cand, ChannelWeb); errs["password"] != "" {
		t.Fatalf("expected 512-byte password accepted, got %v", errs)
	}
}

func TestValidateCandidateCaptchaRequiredOnWebOnly(t *testing.T) {
	cand := validWebCandidate()
	cand.CaptchaToken = ""

	if errs := validateCandidate(cand, ChannelWeb); errs["captchatoken"] == "" {
		t.Fatalf("expected captcha requirement on web, got %v", errs)
	}
	if errs := validateCandidate(cand, ChannelMobile); len(errs) != 0 {
		t.Fatalf("expected mobile attempt without captcha to pass, got %v", errs)
	}
}

func TestValidateCandidateEmailSyntax(t *testing.T) {
	cand := validWebCandidate()
	cand.Email = "not-an-email"
	if errs := validateCandidate(cand, ChannelWeb); errs["email"] == "" {
		t.Fatalf("expected email error, got %v", errs)
	}
}

func TestStdEmailValidatorNormalizesDomain(t *testing.T) {
	email, err := stdEmailValidator{}.Validate("  Alice@EXAMPLE.Com ")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if email != "Alice@example.com" {
		t.Fatalf("expected lowercased domain with preserved local part, got %q", email)
	}
}

func TestStdEmailValidatorRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "plain", "a@b@c", "@example.com"} {
		if _, err := (stdEmailValidator{}).Validate(raw); err == nil {
			t.Fatalf("expected rejection for %q", raw)
		}
	}
}
