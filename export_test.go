package nexus

import "github.com/pixelforge/nexus/password"

// Accessors for the external test package (package nexus_test). The tests
// live outside the package so they can import the store implementations
// without creating an import cycle.

// TestHasher exposes the engine's password hasher for test seeding.
func (e *Engine) TestHasher() *password.Hasher { return e.hasher }

// TestPrincipals exposes the engine's principal store for test inspection.
func (e *Engine) TestPrincipals() PrincipalStore { return e.principals }
