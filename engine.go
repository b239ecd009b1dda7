package nexus

import (
	"context"
	"errors"

	"go.uber.org/zap"

	internalaudit "github.com/pixelforge/nexus/internal/audit"
	"github.com/pixelforge/nexus/password"
	"github.com/pixelforge/nexus/token"
	"github.com/pixelforge/nexus/totp"
)

// Engine orchestrates authentication, principal resolution, authorization,
// and auditing over the wired stores. Construct one with [New] and a
// [Builder]; the zero value is not usable.
//
// Every request is handled statelessly: the engine keeps no per-principal
// state between calls, so concurrent logins for the same principal simply
// produce independent tokens.
type Engine struct {
	config Config

	principals PrincipalStore
	projects   ProjectStore
	documents  DocumentStore
	blobs      BlobStore

	hasher *password.Hasher
	tokens *token.Manager
	totp   *totp.Manager
	audit  *internalaudit.Dispatcher
	log    *zap.Logger
}

// Close drains and stops the audit dispatcher. Call once at shutdown.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// ResolvePrincipal verifies a bearer token and resolves the embedded id to
// a principal, trying the user store first, then the admin store. A token
// that fails signature or expiry checks, or whose id matches no principal,
// yields [ErrInvalidToken].
func (e *Engine) ResolvePrincipal(ctx context.Context, bearer string) (*Principal, error) {
	if e == nil || e.principals == nil {
		return nil, ErrEngineNotReady
	}
	id, err := e.tokens.Verify(bearer)
	if err != nil {
		return nil, ErrInvalidToken
	}
	p, err := e.principals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, e.storeFailure("resolve principal", err)
	}
	return p.Redacted(), nil
}

// storeFailure logs an infrastructure error and returns the generic
// [ErrInternal] the caller may surface.
func (e *Engine) storeFailure(op string, err error) error {
	e.log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return ErrInternal
}
