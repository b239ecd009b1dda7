package nexus_test

import (
	nexus "github.com/pixelforge/nexus"

	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pixelforge/nexus/fieldcrypt"
	"github.com/pixelforge/nexus/stores/fsblob"
	"github.com/pixelforge/nexus/stores/memstore"
)

type documentFixture struct {
	engine   *nexus.Engine
	admin    *nexus.Principal
	lead     *nexus.Principal
	dev      *nexus.Principal
	outsider *nexus.Principal
	project  *nexus.Project
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()

	cfg := testConfig()
	cipher, err := fieldcrypt.New(cfg.Encryption.Secret)
	if err != nil {
		t.Fatalf("fieldcrypt.New failed: %v", err)
	}
	blobs, err := fsblob.New(t.TempDir())
	if err != nil {
		t.Fatalf("fsblob.New failed: %v", err)
	}

	engine, err := nexus.New().
		WithConfig(cfg).
		WithPrincipalStore(memstore.NewPrincipalStore()).
		WithProjectStore(memstore.NewProjectStore(cipher)).
		WithDocumentStore(memstore.NewDocumentStore()).
		WithBlobStore(blobs).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	fix := &documentFixture{
		engine:   engine,
		admin:    seedAdmin(t, engine),
		lead:     seedPrincipal(t, engine, nexus.VariantUser, "Lena Lead", "lead@example.com", "lead-password", nexus.RoleProjectLead),
		dev:      seedPrincipal(t, engine, nexus.VariantUser, "Dana Dev", "dev@example.com", "dev-password", nexus.RoleDeveloper),
		outsider: seedPrincipal(t, engine, nexus.VariantUser, "Omar Out", "out@example.com", "out-password", nexus.RoleDeveloper),
	}

	p, err := engine.CreateProject(context.Background(), fix.admin, nexus.CreateProjectRequest{
		Name:        "Nebula",
		Description: "Procedural skybox renderer",
		Deadline:    time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	leadID := fix.lead.ID
	p, err = engine.AssignTeam(context.Background(), fix.admin, p.ID, nexus.AssignTeamRequest{
		LeadID:       &leadID,
		DeveloperIDs: []string{fix.dev.ID},
	})
	if err != nil {
		t.Fatalf("AssignTeam failed: %v", err)
	}
	fix.project = p
	return fix
}

func TestUploadAndOpenDocument(t *testing.T) {
	fix := newDocumentFixture(t)

	doc, err := fix.engine.UploadDocument(context.Background(), fix.lead, fix.project.ID,
		"design.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}
	if doc.Name != "design.pdf" || doc.UploadedBy != fix.lead.ID || doc.ProjectID != fix.project.ID {
		t.Fatalf("unexpected document metadata: %+v", doc)
	}
	if doc.FilePath == "design.pdf" {
		t.Fatal("expected the blob key to differ from the display name")
	}

	rc, err := fix.engine.OpenDocument(context.Background(), fix.dev, doc.ID)
	if err != nil {
		t.Fatalf("OpenDocument failed: %v", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(body) != "pdf bytes" {
		t.Fatalf("unexpected document body %q", body)
	}
}

func TestUploadDocumentPermissions(t *testing.T) {
	fix := newDocumentFixture(t)

	for _, caller := range []*nexus.Principal{fix.dev, fix.outsider} {
		_, err := fix.engine.UploadDocument(context.Background(), caller, fix.project.ID,
			"notes.txt", strings.NewReader("x"))
		if !errors.Is(err, nexus.ErrAccessDenied) {
			t.Fatalf("%s: expected nexus.ErrAccessDenied, got %v", caller.Name, err)
		}
	}
	if _, err := fix.engine.UploadDocument(context.Background(), fix.admin, fix.project.ID,
		"notes.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("admin UploadDocument failed: %v", err)
	}
}

func TestUploadDocumentValidation(t *testing.T) {
	fix := newDocumentFixture(t)

	if _, err := fix.engine.UploadDocument(context.Background(), fix.admin, fix.project.ID,
		"   ", strings.NewReader("x")); !errors.Is(err, nexus.ErrValidation) {
		t.Fatalf("expected nexus.ErrValidation for blank name, got %v", err)
	}
	if _, err := fix.engine.UploadDocument(context.Background(), fix.admin, "missing-project",
		"notes.txt", strings.NewReader("x")); !errors.Is(err, nexus.ErrNotFound) {
		t.Fatalf("expected nexus.ErrNotFound for missing project, got %v", err)
	}
}

func TestListDocumentsFollowsProjectVisibility(t *testing.T) {
	fix := newDocumentFixture(t)

	if _, err := fix.engine.UploadDocument(context.Background(), fix.lead, fix.project.ID,
		"design.pdf", strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}
	if _, err := fix.engine.CompleteProject(context.Background(), fix.admin, fix.project.ID); err != nil {
		t.Fatalf("CompleteProject failed: %v", err)
	}

	docs, err := fix.engine.ListDocuments(context.Background(), fix.dev, fix.project.ID)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	if _, err := fix.engine.ListDocuments(context.Background(), fix.outsider, fix.project.ID); !errors.Is(err, nexus.ErrNotFound) {
		t.Fatalf("expected nexus.ErrNotFound for outsider, got %v", err)
	}
}

func TestOpenDocumentHiddenFromOutsidersOfCompletedProject(t *testing.T) {
	fix := newDocumentFixture(t)

	doc, err := fix.engine.UploadDocument(context.Background(), fix.lead, fix.project.ID,
		"design.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}
	if _, err := fix.engine.CompleteProject(context.Background(), fix.admin, fix.project.ID); err != nil {
		t.Fatalf("CompleteProject failed: %v", err)
	}

	if _, err := fix.engine.OpenDocument(context.Background(), fix.outsider, doc.ID); !errors.Is(err, nexus.ErrNotFound) {
		t.Fatalf("expected nexus.ErrNotFound for outsider, got %v", err)
	}
	rc, err := fix.engine.OpenDocument(context.Background(), fix.lead, doc.ID)
	if err != nil {
		t.Fatalf("OpenDocument failed: %v", err)
	}
	rc.Close()
}
