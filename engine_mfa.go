package nexus

import (
	"context"
	"errors"
	"time"
)

// SetupMFA generates a fresh TOTP secret for the principal, persists it in
// a pending (not yet enabled) state, and returns the secret together with
// the otpauth:// provisioning URI for the caller to render as a QR code.
// Calling it again replaces any pending secret.
func (e *Engine) SetupMFA(ctx context.Context, principalID string) (*MFASetup, error) {
	if e == nil || e.principals == nil {
		return nil, ErrEngineNotReady
	}
	p, err := e.principals.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, e.storeFailure("mfa setup lookup", err)
	}

	key, err := e.totp.Generate(p.Email)
	if err != nil {
		return nil, e.storeFailure("generate totp secret", err)
	}

	p.MFASecret = key.Secret
	if err := e.principals.Update(ctx, p); err != nil {
		return nil, e.storeFailure("persist totp secret", err)
	}

	e.record(ctx, p.ID, auditMFASetupRequested, resourceAuth, AuditSuccess, "")
	return &MFASetup{Secret: key.Secret, ProvisioningURI: key.URI}, nil
}

// VerifyMFA checks a code against the principal's pending secret and, on
// success, flips the enabled flag. On failure nothing is mutated, so the
// pending secret stays usable for another attempt.
func (e *Engine) VerifyMFA(ctx context.Context, principalID, code string) error {
	if e == nil || e.principals == nil {
		return ErrEngineNotReady
	}
	p, err := e.principals.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return e.storeFailure("mfa verify lookup", err)
	}
	if p.MFASecret == "" {
		// Enrollment never started; nothing to verify against.
		return ErrInvalidMFACode
	}
	if !e.totp.Verify(p.MFASecret, code, time.Now()) {
		return ErrInvalidMFACode
	}

	p.MFAEnabled = true
	if err := e.principals.Update(ctx, p); err != nil {
		return e.storeFailure("enable mfa", err)
	}

	e.record(ctx, p.ID, auditMFAEnabled, resourceAuth, AuditSuccess, "")
	return nil
}
