package nexus

import (
	"context"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/pixelforge/nexus/internal/audit"
)

// Variant names one of the two disjoint principal stores.
type Variant string

const (
	// VariantUser is the ordinary principal store.
	VariantUser Variant = "user"
	// VariantAdmin is the privileged principal store.
	VariantAdmin Variant = "admin"
)

// Role is a principal's role string. Admin-store principals always carry
// [RoleAdmin]; user-store principals carry any of the three values and may
// be reassigned by an administrator.
type Role string

const (
	// RoleDeveloper is the default role for newly registered principals.
	RoleDeveloper Role = "Developer"
	// RoleProjectLead marks a principal eligible to lead projects.
	RoleProjectLead Role = "Project Lead"
	// RoleAdmin is the administrator role.
	RoleAdmin Role = "Admin"
)

// ValidRole reports whether r is one of the three recognized roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleDeveloper, RoleProjectLead, RoleAdmin:
		return true
	}
	return false
}

// Principal is an identity from either store. PasswordHash and MFASecret are
// populated on reads from a [PrincipalStore]; every value that leaves the
// engine has them stripped via [Principal.Redacted].
type Principal struct {
	ID           string
	Variant      Variant
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	MFASecret    string
	MFAEnabled   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Redacted returns a copy of p with credential material removed.
func (p *Principal) Redacted() *Principal {
	if p == nil {
		return nil
	}
	c := *p
	c.PasswordHash = ""
	c.MFASecret = ""
	return &c
}

// IsAdmin reports whether p carries the administrator role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// ProjectStatus is the lifecycle state of a project. Transitions are
// one-way: Active to Completed, never back.
type ProjectStatus string

const (
	// StatusActive is an exported project lifecycle state.
	StatusActive ProjectStatus = "Active"
	// StatusCompleted is an exported project lifecycle state.
	StatusCompleted ProjectStatus = "Completed"
)

// Project is a tracked project. LeadID and DeveloperIDs are weak references
// to user-store principal ids. Description is stored encrypted and decrypted
// transparently by the [ProjectStore].
type Project struct {
	ID           string
	Name         string
	Description  string
	Deadline     time.Time
	Status       ProjectStatus
	LeadID       string
	DeveloperIDs []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasDeveloper reports whether id is in the project's assigned developer set.
func (p *Project) HasDeveloper(id string) bool {
	if p == nil || id == "" {
		return false
	}
	for _, d := range p.DeveloperIDs {
		if d == id {
			return true
		}
	}
	return false
}

// Document is an uploaded file's metadata. FilePath is the opaque key the
// bytes were stored under in the [BlobStore]. Documents are immutable once
// created.
type Document struct {
	ID         string
	Name       string
	FilePath   string
	UploadedBy string
	ProjectID  string
	CreatedAt  time.Time
}

// LoginRequest is the input to [Engine.Login].
//
/// RequiredRole selects which store is queried, not merely a filter:
// [RoleAdmin] routes the lookup to the admin store, any other non-empty
// value to the user store with admin-role principals rejected.
type LoginRequest struct {
	Email        string
	Password     string
	Code         string
	RequiredRole Role
}

// LoginResult is returned by [Engine.Login]. When MFARequired is set the
// caller must resubmit with a TOTP code; PrincipalID is carried so the
// client can correlate the follow-up, and no token is issued.
type LoginResult struct {
	Principal   *Principal
	Token       string
	MFARequired bool
	PrincipalID string
}

// RegisterRequest is the input to [Engine.Register]. Role defaults to the
// configured default (Developer); [RoleAdmin] is rejected, registration
// never promotes.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// MFASetup is returned by [Engine.SetupMFA]. ProvisioningURI is an
/// otpauth:// URI suitable for QR rendering by the caller.
type MFASetup struct {
	Secret          string
	ProvisioningURI string
}

// CreateProjectRequest is the input to [Engine.CreateProject].
type CreateProjectRequest struct {
	Name        string
	Description string
	Deadline    time.Time
}

// AssignTeamRequest is the input to [Engine.AssignTeam]. A nil field leaves
// the corresponding reference untouched. Lead reassignment is applied only
// for administrator callers.
type AssignTeamRequest struct {
	LeadID       *string
	DeveloperIDs []string
}

// ProjectFilter narrows [ProjectStore.List]. The zero value lists every
// project. A MemberID restricts the result to the union of all Active
// projects and the projects the member leads or is assigned to.
type ProjectFilter struct {
	MemberID string
}

// PrincipalStore is the repository contract over the two principal
// collections. Email matching is case-insensitive and scoped to a single
// variant; id lookup tries the user store first, then the admin store.
// The store assigns ID and timestamps on insert and rejects a duplicate
// email within a variant with [ErrDuplicateCredential]. Absent records
// surface as [ErrNotFound].
type PrincipalStore interface {
	FindByEmail(ctx context.Context, variant Variant, email string) (*Principal, error)
	FindByID(ctx context.Context, id string) (*Principal, error)
	Insert(ctx context.Context, variant Variant, p *Principal) (*Principal, error)
	Update(ctx context.Context, p *Principal) error
	List(ctx context.Context, variant Variant) ([]*Principal, error)
}

// ProjectStore is the repository contract over the project collection.
// Implementations encrypt Description on write and decrypt it on read.
type ProjectStore interface {
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*Project, error)
	Insert(ctx context.Context, p *Project) (*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
}

// DocumentStore is the repository contract over document metadata.
type DocumentStore interface {
	Insert(ctx context.Context, d *Document) (*Document, error)
	FindByID(ctx context.Context, id string) (*Document, error)
	ListByProject(ctx context.Context, projectID string) ([]*Document, error)
}

// BlobStore stores uploaded document bytes under opaque keys.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// AuditEvent is one append-only record of a security-relevant event.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's async dispatcher.
type AuditSink = internalaudit.Sink

// AuditStatus is the Success/Failure outcome recorded on an [AuditEvent].
type AuditStatus = internalaudit.Status

const (
	// AuditSuccess marks a successful event.
	AuditSuccess = internalaudit.StatusSuccess
	// AuditFailure marks a failed event.
	AuditFailure = internalaudit.StatusFailure
)

// NoOpSink discards all audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events on a channel, mainly for tests.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON-encoded event per line to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// RedisStreamSink appends audit events to a Redis stream.
type RedisStreamSink = internalaudit.RedisStreamSink

// NewRedisStreamSink creates a sink appending events to the named Redis
// stream.
func NewRedisStreamSink(client redis.Cmdable, stream string) *RedisStreamSink {
	return internalaudit.NewRedisStreamSink(client, stream)
}
