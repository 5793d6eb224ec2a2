// Package password implements password hashing and verification with Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The hasher supports transparent parameter upgrades: if a stored hash was
// produced with weaker parameters, [Argon2.NeedsUpgrade] returns true so the
// caller can re-hash the next time it holds the plaintext.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Candidate password policy
// (length bounds, field validation) is enforced by the registration engine
// before the plaintext reaches this package.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other goSignup package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
