package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned by [Manager.Verify] for any token that is
// malformed, carries a bad signature, or has expired. Callers get no finer
// distinction.
var ErrInvalid = errors.New("invalid token")

// Config configures a [Manager].
type Config struct {
	// Secret is the HS256 signing secret, at least 32 bytes.
	Secret []byte
	// TTL is the validity horizon applied at issuance.
	TTL time.Duration
	// Issuer is stamped into and required on every token when non-empty.
	Issuer string
	// Leeway tolerates clock drift during validation, capped at 2 minutes.
	Leeway time.Duration
}

// Manager issues and verifies signed bearer tokens binding a principal id.
// There is no revocation: a token stays valid until expiry regardless of
// later password changes.
type Manager struct {
	config Config
}

type claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("signing secret must be at least 32 bytes")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Manager{config: cfg}, nil
}

// Issue signs a bearer token for the principal id, valid for the
// configured horizon.
func (m *Manager) Issue(principalID string) (string, error) {
	if m == nil {
		return "", errors.New("token manager not initialized")
	}
	if principalID == "" {
		return "", errors.New("principal id required")
	}

	now := time.Now()
	c := claims{
		UID: principalID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
			Issuer:    m.config.Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.config.Secret)
}

// Verify checks signature and expiry and returns the embedded principal
// id. Any failure is reported as [ErrInvalid].
func (m *Manager) Verify(tokenStr string) (string, error) {
	if m == nil {
		return "", ErrInvalid
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return "", ErrInvalid
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.UID == "" {
		return "", ErrInvalid
	}
	return c.UID, nil
}
