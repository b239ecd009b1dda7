// Package fieldcrypt provides at-rest confidentiality for designated
// sensitive fields, currently the project description.
//
// Store adapters apply it transparently: encrypt on every write, decrypt
// on every read. Decryption of anything that is not recognizable
// ciphertext returns the input unchanged, which is a migration affordance
// for pre-encryption data, not a security property.
package fieldcrypt
