package totp

import (
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Config configures code generation and verification. The defaults applied
// by [NewManager] match what authenticator apps assume: 30-second steps,
// 6 digits, SHA1.
type Config struct {
	Issuer string
	Period uint
	Digits int
	// Skew is the number of steps accepted either side of the current one.
	Skew uint
}

// Key is a freshly generated shared secret with the otpauth:// URI that
// enrolls it in an authenticator app. QR rendering is the caller's concern.
type Key struct {
	Secret string
	URI    string
}

// Manager generates per-principal shared secrets and verifies submitted
// codes against them within the clock-skew window.
//
// No replay state is kept: an accepted code stays accepted for the rest of
// its window. Hardening that requires tracking the last accepted step per
// principal, which this core deliberately leaves to the store layer.
type Manager struct {
	config Config
}

// NewManager validates cfg, applies defaults, and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("totp issuer required")
	}
	if cfg.Period == 0 {
		cfg.Period = 30
	}
	if cfg.Digits == 0 {
		cfg.Digits = 6
	}
	if cfg.Digits != 6 && cfg.Digits != 8 {
		return nil, errors.New("totp digits must be 6 or 8")
	}
	return &Manager{config: cfg}, nil
}

// Generate produces a random shared secret labeled with the issuer and the
// given account (typically the principal's email).
func (m *Manager) Generate(account string) (*Key, error) {
	if m == nil {
		return nil, errors.New("totp manager not initialized")
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.config.Issuer,
		AccountName: account,
		Period:      m.config.Period,
		Digits:      m.digits(),
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}
	return &Key{Secret: key.Secret(), URI: key.URL()}, nil
}

// Verify reports whether code matches the secret at the current step or a
// step within the configured skew of it. Malformed codes are rejected, not
// errors.
func (m *Manager) Verify(secret, code string, at time.Time) bool {
	if m == nil || secret == "" {
		return false
	}
	code = strings.TrimSpace(code)
	if len(code) != m.config.Digits {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    m.config.Period,
		Skew:      m.config.Skew,
		Digits:    m.digits(),
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func (m *Manager) digits() otp.Digits {
	if m.config.Digits == 8 {
		return otp.DigitsEight
	}
	return otp.DigitsSix
}
