package nexus_test

import (
	nexus "github.com/pixelforge/nexus"

	"context"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/pixelforge/nexus/fieldcrypt"
	"github.com/pixelforge/nexus/stores/memstore"
)

func testConfig() nexus.Config {
	cfg := nexus.DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Encryption.Secret = []byte("unit-test-field-secret")
	// Floor-level Argon2id parameters keep hashing fast in tests.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Password.SaltLength = 16
	cfg.Password.KeyLength = 16
	return cfg
}

type testStores struct {
	principals *memstore.PrincipalStore
	projects   *memstore.ProjectStore
	documents  *memstore.DocumentStore
}

func newTestEngine(t *testing.T, cfg nexus.Config) (*nexus.Engine, *testStores) {
	t.Helper()

	cipher, err := fieldcrypt.New(cfg.Encryption.Secret)
	if err != nil {
		t.Fatalf("fieldcrypt.New failed: %v", err)
	}
	stores := &testStores{
		principals: memstore.NewPrincipalStore(),
		projects:   memstore.NewProjectStore(cipher),
		documents:  memstore.NewDocumentStore(),
	}

	engine, err := nexus.New().
		WithConfig(cfg).
		WithPrincipalStore(stores.principals).
		WithProjectStore(stores.projects).
		WithDocumentStore(stores.documents).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, stores
}

// seedPrincipal inserts a principal with a real password hash directly into
// the chosen store, bypassing Register so admin accounts can exist too.
func seedPrincipal(t *testing.T, engine *nexus.Engine, variant nexus.Variant, name, email, plaintext string, role nexus.Role) *nexus.Principal {
	t.Helper()

	hash, err := engine.TestHasher().Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	created, err := engine.TestPrincipals().Insert(context.Background(), variant, &nexus.Principal{
		Variant:      variant,
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}
	return created
}

func seedAdmin(t *testing.T, engine *nexus.Engine) *nexus.Principal {
	t.Helper()
	return seedPrincipal(t, engine, nexus.VariantAdmin, "Root Admin", "admin@example.com", "admin-password", nexus.RoleAdmin)
}

// codeAt computes the one-time code for secret at the given instant, so
// tests can probe the acceptance window directly.
func codeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()

	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		t.Fatalf("GenerateCodeCustom failed: %v", err)
	}
	return code
}
