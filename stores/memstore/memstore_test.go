package memstore

import (
	"context"
	"errors"
	"testing"

	nexus "github.com/pixelforge/nexus"
	"github.com/pixelforge/nexus/fieldcrypt"
)

func TestPrincipalStoreVariantsAreDisjoint(t *testing.T) {
	s := NewPrincipalStore()

	user, err := s.Insert(context.Background(), nexus.VariantUser, &nexus.Principal{
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  nexus.RoleDeveloper,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if user.ID == "" || user.CreatedAt.IsZero() {
		t.Fatalf("expected assigned id and timestamps, got %+v", user)
	}

	// Same email in the other variant is a distinct identity at this layer.
	if _, err := s.Insert(context.Background(), nexus.VariantAdmin, &nexus.Principal{
		Name:  "Admin Alice",
		Email: "alice@example.com",
		Role:  nexus.RoleAdmin,
	}); err != nil {
		t.Fatalf("cross-variant Insert failed: %v", err)
	}

	// Within a variant the email is unique, case-insensitively.
	if _, err := s.Insert(context.Background(), nexus.VariantUser, &nexus.Principal{
		Name:  "Other Alice",
		Email: "ALICE@example.com",
		Role:  nexus.RoleDeveloper,
	}); !errors.Is(err, nexus.ErrDuplicateCredential) {
		t.Fatalf("expected ErrDuplicateCredential, got %v", err)
	}

	found, err := s.FindByEmail(context.Background(), nexus.VariantUser, "Alice@Example.COM")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected %s, got %s", user.ID, found.ID)
	}
	if _, err := s.FindByEmail(context.Background(), nexus.VariantUser, "missing@example.com"); !errors.Is(err, nexus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPrincipalStoreFindByIDSearchesBothVariants(t *testing.T) {
	s := NewPrincipalStore()

	admin, err := s.Insert(context.Background(), nexus.VariantAdmin, &nexus.Principal{
		Name:  "Root",
		Email: "root@example.com",
		Role:  nexus.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	found, err := s.FindByID(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Variant != nexus.VariantAdmin {
		t.Fatalf("expected admin variant, got %q", found.Variant)
	}
	if _, err := s.FindByID(context.Background(), "missing"); !errors.Is(err, nexus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPrincipalStoreReturnsClones(t *testing.T) {
	s := NewPrincipalStore()

	created, err := s.Insert(context.Background(), nexus.VariantUser, &nexus.Principal{
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  nexus.RoleDeveloper,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	created.Name = "Mutated"
	stored, err := s.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if stored.Name != "Alice" {
		t.Fatal("mutating a returned principal must not affect the store")
	}
}

func TestPrincipalStoreUpdateReindexesEmail(t *testing.T) {
	s := NewPrincipalStore()

	p, err := s.Insert(context.Background(), nexus.VariantUser, &nexus.Principal{
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  nexus.RoleDeveloper,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	p.Email = "alice.new@example.com"
	if err := s.Update(context.Background(), p); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, err := s.FindByEmail(context.Background(), nexus.VariantUser, "alice@example.com"); !errors.Is(err, nexus.ErrNotFound) {
		t.Fatalf("expected the old email to be unindexed, got %v", err)
	}
	if _, err := s.FindByEmail(context.Background(), nexus.VariantUser, "alice.new@example.com"); err != nil {
		t.Fatalf("FindByEmail with new address failed: %v", err)
	}
}

func newProjectStoreForTest(t *testing.T) *ProjectStore {
	t.Helper()
	cipher, err := fieldcrypt.New([]byte("unit-test-field-secret"))
	if err != nil {
		t.Fatalf("fieldcrypt.New failed: %v", err)
	}
	return NewProjectStore(cipher)
}

func TestProjectStoreEncryptsDescriptionsAtRest(t *testing.T) {
	s := newProjectStoreForTest(t)

	created, err := s.Insert(context.Background(), &nexus.Project{
		Name:        "Nebula",
		Description: "Procedural skybox renderer",
		Status:      nexus.StatusActive,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if created.Description != "Procedural skybox renderer" {
		t.Fatalf("expected decrypted description on return, got %q", created.Description)
	}

	s.mu.RLock()
	raw := s.projects[created.ID].Description
	s.mu.RUnlock()
	if raw == "Procedural skybox renderer" {
		t.Fatal("expected the stored description to be ciphertext")
	}

	found, err := s.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Description != "Procedural skybox renderer" {
		t.Fatalf("expected decrypted description on read, got %q", found.Description)
	}
}

func TestProjectStoreListMemberFilter(t *testing.T) {
	s := newProjectStoreForTest(t)

	active, err := s.Insert(context.Background(), &nexus.Project{
		Name: "Open", Description: "d", Status: nexus.StatusActive,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	mine, err := s.Insert(context.Background(), &nexus.Project{
		Name: "Mine", Description: "d", Status: nexus.StatusCompleted,
		DeveloperIDs: []string{"dev-1"},
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := s.Insert(context.Background(), &nexus.Project{
		Name: "Theirs", Description: "d", Status: nexus.StatusCompleted,
		LeadID: "lead-9",
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	all, err := s.List(context.Background(), nexus.ProjectFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 projects unfiltered, got %d", len(all))
	}

	visible, err := s.List(context.Background(), nexus.ProjectFilter{MemberID: "dev-1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	ids := map[string]bool{}
	for _, p := range visible {
		ids[p.ID] = true
	}
	if len(visible) != 2 || !ids[active.ID] || !ids[mine.ID] {
		t.Fatalf("expected the active and assigned projects, got %v", ids)
	}
}

func TestProjectStoreDelete(t *testing.T) {
	s := newProjectStoreForTest(t)

	p, err := s.Insert(context.Background(), &nexus.Project{Name: "Doomed", Description: "d"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(context.Background(), p.ID); !errors.Is(err, nexus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Update(context.Background(), p); !errors.Is(err, nexus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestDocumentStoreListByProject(t *testing.T) {
	s := NewDocumentStore()

	for _, projectID := range []string{"p1", "p1", "p2"} {
		if _, err := s.Insert(context.Background(), &nexus.Document{
			Name:      "doc",
			ProjectID: projectID,
		}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	docs, err := s.ListByProject(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	none, err := s.ListByProject(context.Background(), "p3")
	if err != nil {
		t.Fatalf("ListByProject failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no documents, got %d", len(none))
	}
}
