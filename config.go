package nexus

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// Config carries the process-wide settings the engine is built with.
// Secrets are injected at startup and never rotated at runtime; rotate by
// redeploying configuration.
type Config struct {
	Token      TokenConfig
	Password   PasswordConfig
	TOTP       TOTPConfig
	Audit      AuditConfig
	Encryption EncryptionConfig

	// DefaultRole is assigned to registrations that carry no role.
	// Defaults to [RoleDeveloper].
	DefaultRole Role

	// Logger receives swallowed audit failures and infrastructure errors.
	// Defaults to a no-op logger. Credentials are never logged.
	Logger *zap.Logger
}

// TokenConfig configures bearer token issuance and verification.
type TokenConfig struct {
	// Secret is the HS256 signing secret, at least 32 bytes.
	Secret []byte
	// TTL is the token validity horizon. Defaults to 30 days.
	TTL time.Duration
	// Issuer is stamped into and required on every token.
	Issuer string
	// Leeway tolerates clock drift when validating expiry.
	Leeway time.Duration
}

// PasswordConfig carries the Argon2id work factor. The defaults target
// tens of milliseconds per verify on current server hardware.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// MinLength is the minimum accepted plaintext length, in bytes.
	MinLength int
}

// TOTPConfig configures the one-time code engine.
type TOTPConfig struct {
	// Issuer is embedded in provisioning URIs shown to authenticator apps.
	Issuer string
	// Period is the time step in seconds. Defaults to 30.
	Period uint
	// Digits is the code length. Defaults to 6.
	Digits int
	// Skew is the number of adjacent steps accepted either side of now.
	// Defaults to 1; an accepted code is not invalidated for reuse within
	// its window.
	Skew uint
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking when the buffer is full.
	DropIfFull bool
}

// EncryptionConfig carries the field-encryption secret. The engine itself
// does not encrypt; the secret is handed to store constructors through
// [Config] so one startup object covers every subsystem.
type EncryptionConfig struct {
	// Secret keys the project-field cipher, at least 16 bytes.
	Secret []byte
}

// DefaultConfig returns a Config with every tunable at its default.
// Token.Secret and Encryption.Secret must still be supplied.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:    30 * 24 * time.Hour,
			Issuer: "pixelforge-nexus",
			Leeway: time.Minute,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   6,
		},
		TOTP: TOTPConfig{
			Issuer: "PixelForge Nexus",
			Period: 30,
			Digits: 6,
			Skew:   1,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		DefaultRole: RoleDeveloper,
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if len(c.Token.Secret) < 32 {
		return errors.New("token secret must be at least 32 bytes")
	}
	if c.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("token leeway out of range")
	}
	if c.Password.Memory < 8*1024 {
		return errors.New("password memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("password time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("password parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("password salt length must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("password key length must be >= 16")
	}
	if c.Password.MinLength < 1 {
		return errors.New("password min length must be >= 1")
	}
	if c.TOTP.Period == 0 {
		return errors.New("totp period must be positive")
	}
	if c.TOTP.Digits != 6 && c.TOTP.Digits != 8 {
		return errors.New("totp digits must be 6 or 8")
	}
	if c.TOTP.Skew > 2 {
		return errors.New("totp skew must be <= 2 steps")
	}
	if !ValidRole(c.DefaultRole) || c.DefaultRole == RoleAdmin {
		return errors.New("default role must be Developer or Project Lead")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 1 {
		return errors.New("audit buffer size must be >= 1")
	}
	return nil
}
