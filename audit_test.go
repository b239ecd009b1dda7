package nexus_test

import (
	nexus "github.com/pixelforge/nexus"

	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixelforge/nexus/fieldcrypt"
	"github.com/pixelforge/nexus/stores/memstore"
)

func newAuditedEngine(t *testing.T) (*nexus.Engine, *nexus.ChannelSink) {
	t.Helper()

	cfg := testConfig()
	cipher, err := fieldcrypt.New(cfg.Encryption.Secret)
	if err != nil {
		t.Fatalf("fieldcrypt.New failed: %v", err)
	}
	sink := nexus.NewChannelSink(64)
	engine, err := nexus.New().
		WithConfig(cfg).
		WithPrincipalStore(memstore.NewPrincipalStore()).
		WithProjectStore(memstore.NewProjectStore(cipher)).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, sink
}

// drainEvents closes the engine so the dispatcher flushes, then collects
// whatever reached the sink.
func drainEvents(engine *nexus.Engine, sink *nexus.ChannelSink) []nexus.AuditEvent {
	engine.Close()
	var out []nexus.AuditEvent
	for {
		select {
		case e := <-sink.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestAuditTrailForLoginLifecycle(t *testing.T) {
	engine, sink := newAuditedEngine(t)

	p, err := engine.Register(context.Background(), nexus.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	ctx := nexus.WithClientIP(context.Background(), "203.0.113.7")
	if _, err := engine.Login(ctx, nexus.LoginRequest{
		Email:        "alice@example.com",
		Password:     "wrong-password",
		RequiredRole: nexus.RoleDeveloper,
	}); !errors.Is(err, nexus.ErrInvalidCredentials) {
		t.Fatalf("expected nexus.ErrInvalidCredentials, got %v", err)
	}
	if _, err := engine.Login(ctx, nexus.LoginRequest{
		Email:        "alice@example.com",
		Password:     "correct-password",
		RequiredRole: nexus.RoleDeveloper,
	}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	events := drainEvents(engine, sink)

	byAction := map[string][]nexus.AuditEvent{}
	for _, e := range events {
		byAction[e.Action] = append(byAction[e.Action], e)
	}

	if len(byAction["user_registered"]) != 1 {
		t.Fatalf("expected one user_registered event, got %d", len(byAction["user_registered"]))
	}
	failures := byAction["login_failure"]
	if len(failures) != 1 {
		t.Fatalf("expected one login_failure event, got %d", len(failures))
	}
	if failures[0].Status != nexus.AuditFailure || failures[0].PrincipalID != p.ID {
		t.Fatalf("unexpected failure event %+v", failures[0])
	}
	if failures[0].IP != "203.0.113.7" {
		t.Fatalf("expected client IP on event, got %q", failures[0].IP)
	}
	successes := byAction["login_success"]
	if len(successes) != 1 || successes[0].Status != nexus.AuditSuccess {
		t.Fatalf("unexpected success events %+v", successes)
	}
	for _, e := range events {
		if e.Timestamp.IsZero() || e.Timestamp.After(time.Now().Add(time.Second)) {
			t.Fatalf("bad timestamp on %+v", e)
		}
	}
}

func TestAuditTrailForMFAChallenge(t *testing.T) {
	engine, sink := newAuditedEngine(t)

	p, err := engine.Register(context.Background(), nexus.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	secret := enrollMFA(t, engine, p.ID)

	// Challenge issued, then a failed code, then success.
	if _, err := engine.Login(context.Background(), nexus.LoginRequest{
		Email: "alice@example.com", Password: "correct-password", RequiredRole: nexus.RoleDeveloper,
	}); err != nil {
		t.Fatalf("challenge Login failed: %v", err)
	}
	if _, err := engine.Login(context.Background(), nexus.LoginRequest{
		Email: "alice@example.com", Password: "correct-password", Code: "000000", RequiredRole: nexus.RoleDeveloper,
	}); !errors.Is(err, nexus.ErrInvalidMFACode) {
		t.Fatalf("expected nexus.ErrInvalidMFACode, got %v", err)
	}
	if _, err := engine.Login(context.Background(), nexus.LoginRequest{
		Email: "alice@example.com", Password: "correct-password",
		Code: codeAt(t, secret, time.Now()), RequiredRole: nexus.RoleDeveloper,
	}); err != nil {
		t.Fatalf("final Login failed: %v", err)
	}

	seen := map[string]int{}
	for _, e := range drainEvents(engine, sink) {
		seen[e.Action]++
	}
	for _, action := range []string{
		"mfa_setup_requested", "mfa_enabled",
		"login_mfa_requested", "login_mfa_failure", "login_success",
	} {
		if seen[action] == 0 {
			t.Fatalf("expected at least one %s event, saw %v", action, seen)
		}
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.Enabled = false

	sink := nexus.NewChannelSink(16)
	engine, err := nexus.New().
		WithConfig(cfg).
		WithPrincipalStore(memstore.NewPrincipalStore()).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := engine.Register(context.Background(), nexus.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct-password",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if events := drainEvents(engine, sink); len(events) != 0 {
		t.Fatalf("expected no events with auditing disabled, got %d", len(events))
	}
	if dropped := engine.AuditDropped(); dropped != 0 {
		t.Fatalf("expected no dropped events, got %d", dropped)
	}
}
