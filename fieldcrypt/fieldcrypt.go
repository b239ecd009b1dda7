package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	// prefix versions the wire format so a future scheme change can
	// coexist with stored ciphertext.
	prefix = "v1:"

	keyLength = 32
)

// scrypt salt for deriving the AES key from the configured secret. Fixed:
// the secret itself is high-entropy process configuration, not a password
// shared across deployments.
var keySalt = []byte("pixelforge.nexus.fieldcrypt.v1")

// Cipher encrypts and decrypts a sensitive text field with AES-256-GCM
// under a key derived from a process-wide secret. Each encryption uses a
// fresh random nonce, so equal plaintexts produce distinct ciphertexts.
type Cipher struct {
	aead cipher.AEAD
}

// New derives the field key from secret and returns a ready Cipher.
func New(secret []byte) (*Cipher, error) {
	if len(secret) < 16 {
		return nil, errors.New("field encryption secret must be at least 16 bytes")
	}
	key, err := scrypt.Key(secret, keySalt, 1<<15, 8, 1, keyLength)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns a versioned, base64-encoded
// ciphertext. The empty string passes through unchanged.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if c == nil {
		return "", errors.New("cipher not initialized")
	}
	if plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return prefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by [Cipher.Encrypt]. Input that is not
// validly encrypted ciphertext is returned unchanged rather than failing
// the read; stored legacy plaintext keeps working through a migration.
func (c *Cipher) Decrypt(value string) string {
	if c == nil || value == "" {
		return value
	}
	encoded, found := strings.CutPrefix(value, prefix)
	if !found {
		return value
	}
	sealed, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(sealed) < c.aead.NonceSize() {
		return value
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return value
	}
	return string(plaintext)
}
