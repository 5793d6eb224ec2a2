// Package stores provides the Redis-backed, short-lived record store for
// pending signups awaiting email confirmation.
//
// # Design
//
// Each record is a JSON document in Redis with a TTL, indexed both by record
// ID and by account ID (one live record per account; a re-dispatched token
// supersedes the previous one). Records are single-use: Consume removes the
// record atomically with GETDEL, validates it in constant time, and restores
// it only when a failed attempt still has budget left. A brief window exists
// during which a record under a failed consume is absent; concurrent
// confirmations of the same token observe not-found, which is the intended
// single-use outcome.
//
// # What this package must NOT do
//
//   - Generate or encode tokens; the engine owns issuance.
//   - Decide registration outcomes.
package stores
