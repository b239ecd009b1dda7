// Package password implements one-way adaptive password hashing with
// Argon2id.
//
// # Output format
//
// Digests are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy
// (minimum length, when a hash happens) is enforced by the engine, which
// guarantees a plaintext is hashed exactly once per genuine change.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other nexus package.
//   - Log plaintexts or digests.
package password
