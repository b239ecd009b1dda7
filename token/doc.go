// Package token issues and verifies the signed, time-bounded bearer tokens
// that prove identity between requests.
//
// Tokens are HS256-signed JWTs carrying the principal id in a "uid" claim.
// The signing secret is process-wide configuration; rotation means
// redeploying with a new secret, which invalidates everything outstanding.
//
// # What this package must NOT do
//
//   - Look principals up — it maps token to id and back, nothing more.
//   - Keep revocation state. A verified token is valid until expiry.
package token
