// Package goSignup provides an account-registration decision engine with risk-based
// email confirmation, Redis-backed hashing-cost rate limits, and single-use
// confirmation tokens.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build]. Each registration
// attempt is an independent unit of work; the only shared mutable state is the signup
// rate limiter's Redis counters.
//
// # Architecture boundaries
//
// goSignup is the public surface. It exposes [Engine], [Builder], [Config], the
// collaborator interfaces ([UserStore], [CaptchaVerifier], [IPHistoryStore], ...) and
// value types (Candidate, Result, RiskReason, MetricsSnapshot). All internal
// coordination — token encoding, pending-signup persistence, audit dispatch — lives
// under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or token encoding details in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is allocation-only
//     until Build).
//   - Render forms, send email, or verify captchas itself — those are collaborator
//     contracts supplied by the host application.
//
// # Decision contract
//
// RegisterWeb and RegisterMobile always resolve to exactly one Result kind:
// Rejected, RateLimited, PendingConfirmation, or Complete. Escalated conditions
// (email failing validation after the form accepted it, a uniqueness collision on
// create, a backend outage) surface as errors instead and should be alertable.
package goSignup
