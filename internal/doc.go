// Package internal contains helper utilities that are intentionally private to goSignup,
// including secure random generation, the opaque confirmation-token codec, and
// fingerprint hashing.
//
// # Sub-packages
//
//   - stores — Redis-backed pending-signup record persistence
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSignup API.
//   - Be imported by any package outside the goSignup module.
package internal
