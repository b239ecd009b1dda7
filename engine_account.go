package nexus

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const maxNameLength = 50

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Register creates a user-store principal. Role defaults to the configured
// default; [RoleAdmin] is rejected outright, registration never promotes.
//
// The email is checked against both stores before insertion so a new
// account can never shadow an existing identity on either portal, and the
// user store's own uniqueness constraint backstops the race between two
// concurrent registrations: exactly one wins, the other gets
// [ErrDuplicateCredential].
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*Principal, error) {
	if e == nil || e.principals == nil {
		return nil, ErrEngineNotReady
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	case len(name) > maxNameLength:
		return nil, fmt.Errorf("%w: name cannot exceed %d characters", ErrValidation, maxNameLength)
	case !emailPattern.MatchString(email):
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	case len(req.Password) < e.config.Password.MinLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, e.config.Password.MinLength)
	}

	role := req.Role
	if role == "" {
		role = e.config.DefaultRole
	}
	if role == RoleAdmin {
		return nil, fmt.Errorf("%w: cannot register with role %s", ErrValidation, RoleAdmin)
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	for _, variant := range []Variant{VariantUser, VariantAdmin} {
		_, err := e.principals.FindByEmail(ctx, variant, email)
		switch {
		case err == nil:
			return nil, ErrDuplicateCredential
		case errors.Is(err, ErrNotFound):
		default:
			return nil, e.storeFailure("register duplicate check", err)
		}
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return nil, e.storeFailure("hash password", err)
	}

	created, err := e.principals.Insert(ctx, VariantUser, &Principal{
		Variant:      VariantUser,
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCredential) {
			return nil, ErrDuplicateCredential
		}
		return nil, e.storeFailure("register insert", err)
	}

	e.record(ctx, created.ID, auditUserRegistered, resourceAuth, AuditSuccess, "")
	return created.Redacted(), nil
}

// ChangePassword re-verifies the current password before accepting the new
// one. A wrong current password leaves the stored hash untouched. Only the
// genuinely new plaintext is hashed; the stored digest is never re-hashed.
func (e *Engine) ChangePassword(ctx context.Context, principalID, current, next string) error {
	if e == nil || e.principals == nil {
		return ErrEngineNotReady
	}
	p, err := e.principals.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return e.storeFailure("password change lookup", err)
	}

	ok, err := e.hasher.Verify(current, p.PasswordHash)
	if err != nil || !ok {
		e.record(ctx, p.ID, auditPasswordRejected, resourceAuth, AuditFailure, "invalid current password")
		return ErrInvalidCredentials
	}
	if len(next) < e.config.Password.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, e.config.Password.MinLength)
	}

	hash, err := e.hasher.Hash(next)
	if err != nil {
		return e.storeFailure("hash password", err)
	}
	p.PasswordHash = hash
	if err := e.principals.Update(ctx, p); err != nil {
		return e.storeFailure("persist password", err)
	}

	e.record(ctx, p.ID, auditPasswordChanged, resourceAuth, AuditSuccess, "")
	return nil
}

// ListPrincipals returns every principal from both stores, admins first,
// with credential material redacted. Administrator only.
func (e *Engine) ListPrincipals(ctx context.Context, caller *Principal) ([]*Principal, error) {
	if e == nil || e.principals == nil {
		return nil, ErrEngineNotReady
	}
	if !caller.IsAdmin() {
		return nil, ErrAccessDenied
	}

	admins, err := e.principals.List(ctx, VariantAdmin)
	if err != nil {
		return nil, e.storeFailure("list admins", err)
	}
	users, err := e.principals.List(ctx, VariantUser)
	if err != nil {
		return nil, e.storeFailure("list users", err)
	}

	out := make([]*Principal, 0, len(admins)+len(users))
	for _, p := range admins {
		out = append(out, p.Redacted())
	}
	for _, p := range users {
		out = append(out, p.Redacted())
	}
	return out, nil
}

// UpdateRole reassigns a user-store principal's role. Administrator only.
// Admin-store principals are immutable; targeting one reports [ErrNotFound]
// just as a missing id does.
func (e *Engine) UpdateRole(ctx context.Context, caller *Principal, principalID string, role Role) error {
	if e == nil || e.principals == nil {
		return ErrEngineNotReady
	}
	if !caller.IsAdmin() {
		return ErrAccessDenied
	}
	if !ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	p, err := e.principals.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return e.storeFailure("role change lookup", err)
	}
	if p.Variant == VariantAdmin {
		return ErrNotFound
	}

	prior := p.Role
	p.Role = role
	if err := e.principals.Update(ctx, p); err != nil {
		return e.storeFailure("persist role", err)
	}

	e.record(ctx, p.ID, auditRoleChanged, resourceAuth, AuditSuccess,
		fmt.Sprintf("%s -> %s", prior, role))
	return nil
}
