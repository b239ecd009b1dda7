// Package memstore provides in-memory implementations of every repository
// contract. They back the test suites and small single-process deployments;
// production wiring uses stores/mongostore.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	nexus "github.com/pixelforge/nexus"
	"github.com/pixelforge/nexus/fieldcrypt"
)

// PrincipalStore keeps the two principal collections in process memory.
// Email uniqueness is enforced per variant under the store lock, so of two
// racing inserts with the same email exactly one wins.
type PrincipalStore struct {
	mu      sync.RWMutex
	byID    map[nexus.Variant]map[string]*nexus.Principal
	byEmail map[nexus.Variant]map[string]string // lowercased email -> id
}

// NewPrincipalStore returns an empty PrincipalStore.
func NewPrincipalStore() *PrincipalStore {
	return &PrincipalStore{
		byID: map[nexus.Variant]map[string]*nexus.Principal{
			nexus.VariantUser:  {},
			nexus.VariantAdmin: {},
		},
		byEmail: map[nexus.Variant]map[string]string{
			nexus.VariantUser:  {},
			nexus.VariantAdmin: {},
		},
	}
}

func (s *PrincipalStore) FindByEmail(_ context.Context, variant nexus.Variant, email string) (*nexus.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[variant][strings.ToLower(email)]
	if !ok {
		return nil, nexus.ErrNotFound
	}
	return clonePrincipal(s.byID[variant][id]), nil
}

func (s *PrincipalStore) FindByID(_ context.Context, id string) (*nexus.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, variant := range []nexus.Variant{nexus.VariantUser, nexus.VariantAdmin} {
		if p, ok := s.byID[variant][id]; ok {
			return clonePrincipal(p), nil
		}
	}
	return nil, nexus.ErrNotFound
}

func (s *PrincipalStore) Insert(_ context.Context, variant nexus.Variant, p *nexus.Principal) (*nexus.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(p.Email)
	if _, exists := s.byEmail[variant][key]; exists {
		return nil, nexus.ErrDuplicateCredential
	}

	stored := clonePrincipal(p)
	stored.ID = uuid.NewString()
	stored.Variant = variant
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.byID[variant][stored.ID] = stored
	s.byEmail[variant][key] = stored.ID
	return clonePrincipal(stored), nil
}

func (s *PrincipalStore) Update(_ context.Context, p *nexus.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[p.Variant][p.ID]
	if !ok {
		return nexus.ErrNotFound
	}

	stored := clonePrincipal(p)
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	if !strings.EqualFold(current.Email, stored.Email) {
		delete(s.byEmail[p.Variant], strings.ToLower(current.Email))
		s.byEmail[p.Variant][strings.ToLower(stored.Email)] = stored.ID
	}
	s.byID[p.Variant][p.ID] = stored
	return nil
}

func (s *PrincipalStore) List(_ context.Context, variant nexus.Variant) ([]*nexus.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*nexus.Principal, 0, len(s.byID[variant]))
	for _, p := range s.byID[variant] {
		out = append(out, clonePrincipal(p))
	}
	return out, nil
}

// ProjectStore keeps projects in memory, encrypting descriptions at rest
// exactly as the production adapter does so tests exercise the same path.
type ProjectStore struct {
	mu       sync.RWMutex
	cipher   *fieldcrypt.Cipher
	projects map[string]*nexus.Project
}

// NewProjectStore returns an empty ProjectStore encrypting descriptions
// with cipher.
func NewProjectStore(cipher *fieldcrypt.Cipher) *ProjectStore {
	return &ProjectStore{
		cipher:   cipher,
		projects: map[string]*nexus.Project{},
	}
}

func (s *ProjectStore) FindByID(_ context.Context, id string) (*nexus.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, nexus.ErrNotFound
	}
	return s.decrypt(p), nil
}

func (s *ProjectStore) List(_ context.Context, filter nexus.ProjectFilter) ([]*nexus.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*nexus.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if filter.MemberID != "" && !visibleToMember(p, filter.MemberID) {
			continue
		}
		out = append(out, s.decrypt(p))
	}
	return out, nil
}

func visibleToMember(p *nexus.Project, memberID string) bool {
	return p.Status == nexus.StatusActive || p.LeadID == memberID || p.HasDeveloper(memberID)
}

func (s *ProjectStore) Insert(_ context.Context, p *nexus.Project) (*nexus.Project, error) {
	encrypted, err := s.cipher.Encrypt(p.Description)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneProject(p)
	stored.ID = uuid.NewString()
	stored.Description = encrypted
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.projects[stored.ID] = stored
	return s.decrypt(stored), nil
}

func (s *ProjectStore) Update(_ context.Context, p *nexus.Project) error {
	encrypted, err := s.cipher.Encrypt(p.Description)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.projects[p.ID]
	if !ok {
		return nexus.ErrNotFound
	}

	stored := cloneProject(p)
	stored.Description = encrypted
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	s.projects[p.ID] = stored
	return nil
}

func (s *ProjectStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return nexus.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *ProjectStore) decrypt(p *nexus.Project) *nexus.Project {
	out := cloneProject(p)
	out.Description = s.cipher.Decrypt(out.Description)
	return out
}

// DocumentStore keeps document metadata in memory.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*nexus.Document
}

// NewDocumentStore returns an empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{documents: map[string]*nexus.Document{}}
}

func (s *DocumentStore) Insert(_ context.Context, d *nexus.Document) (*nexus.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *d
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	s.documents[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (s *DocumentStore) FindByID(_ context.Context, id string) (*nexus.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.documents[id]
	if !ok {
		return nil, nexus.ErrNotFound
	}
	out := *d
	return &out, nil
}

func (s *DocumentStore) ListByProject(_ context.Context, projectID string) ([]*nexus.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*nexus.Document
	for _, d := range s.documents {
		if d.ProjectID == projectID {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func clonePrincipal(p *nexus.Principal) *nexus.Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneProject(p *nexus.Project) *nexus.Project {
	if p == nil {
		return nil
	}
	c := *p
	c.DeveloperIDs = append([]string(nil), p.DeveloperIDs...)
	return &c
}
