package nexus

import (
	"context"
	"errors"
	"time"
)

// Login runs the credential check, the optional TOTP challenge, and token
// issuance, in that order.
//
// RequiredRole selects the store queried for the email: [RoleAdmin] routes
// to the admin store, any other non-empty value to the user store. A miss in
// the selected store and a wrong password both return
// [ErrInvalidCredentials]; the caller learns nothing about which was wrong.
// A role mismatch for the requested portal returns [ErrAccessDenied].
//
// When the resolved principal has MFA enabled and no code was supplied, the
// result carries MFARequired and the principal id but no token; resubmit
// with the current code to finish.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if e == nil || e.principals == nil {
		return nil, ErrEngineNotReady
	}
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	variant := VariantUser
	if req.RequiredRole == RoleAdmin {
		variant = VariantAdmin
	}

	p, err := e.principals.FindByEmail(ctx, variant, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, e.storeFailure("login lookup", err)
	}

	if req.RequiredRole == RoleAdmin && p.Role != RoleAdmin {
		return nil, ErrAccessDenied
	}
	if req.RequiredRole != "" && req.RequiredRole != RoleAdmin && p.Role == RoleAdmin {
		// Admin-role principals must use the admin portal.
		return nil, ErrAccessDenied
	}

	ok, err := e.hasher.Verify(req.Password, p.PasswordHash)
	if err != nil || !ok {
		e.record(ctx, p.ID, auditLoginFailure, resourceAuth, AuditFailure, "invalid password")
		return nil, ErrInvalidCredentials
	}

	if p.MFAEnabled {
		if req.Code == "" {
			e.record(ctx, p.ID, auditLoginMFARequested, resourceAuth, AuditSuccess, "")
			return &LoginResult{MFARequired: true, PrincipalID: p.ID}, nil
		}
		if !e.totp.Verify(p.MFASecret, req.Code, time.Now()) {
			e.record(ctx, p.ID, auditLoginMFAFailure, resourceAuth, AuditFailure, "invalid mfa token")
			return nil, ErrInvalidMFACode
		}
	}

	bearer, err := e.tokens.Issue(p.ID)
	if err != nil {
		return nil, e.storeFailure("issue token", err)
	}

	e.record(ctx, p.ID, auditLoginSuccess, resourceAuth, AuditSuccess, "")
	return &LoginResult{Principal: p.Redacted(), Token: bearer}, nil
}
