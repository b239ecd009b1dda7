package nexus

import (
	"errors"

	"go.uber.org/zap"

	internalaudit "github.com/pixelforge/nexus/internal/audit"
	"github.com/pixelforge/nexus/password"
	"github.com/pixelforge/nexus/token"
	"github.com/pixelforge/nexus/totp"
)

// Builder assembles an [Engine] from configuration and store adapters.
type Builder struct {
	config Config

	principals PrincipalStore
	projects   ProjectStore
	documents  DocumentStore
	blobs      BlobStore
	sink       AuditSink

	built bool
}

// New returns a Builder pre-loaded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithPrincipalStore wires the credential store. Required.
func (b *Builder) WithPrincipalStore(s PrincipalStore) *Builder {
	b.principals = s
	return b
}

// WithProjectStore wires the project repository. Project operations return
// [ErrEngineNotReady] without one.
func (b *Builder) WithProjectStore(s ProjectStore) *Builder {
	b.projects = s
	return b
}

// WithDocumentStore wires the document metadata repository.
func (b *Builder) WithDocumentStore(s DocumentStore) *Builder {
	b.documents = s
	return b
}

// WithBlobStore wires byte storage for uploaded documents.
func (b *Builder) WithBlobStore(s BlobStore) *Builder {
	b.blobs = s
	return b
}

// WithAuditSink wires the audit destination. Without one, and with auditing
// enabled, events go to a no-op sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithLogger overrides Config.Logger.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.config.Logger = log
	return b
}

// Build validates the configuration, constructs the crypto subsystems, and
// returns the engine. A builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.principals == nil {
		return nil, errors.New("principal store required")
	}

	log := b.config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(token.Config{
		Secret: b.config.Token.Secret,
		TTL:    b.config.Token.TTL,
		Issuer: b.config.Token.Issuer,
		Leeway: b.config.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	codes, err := totp.NewManager(totp.Config{
		Issuer: b.config.TOTP.Issuer,
		Period: b.config.TOTP.Period,
		Digits: b.config.TOTP.Digits,
		Skew:   b.config.TOTP.Skew,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     b.config,
		principals: b.principals,
		projects:   b.projects,
		documents:  b.documents,
		blobs:      b.blobs,
		hasher:     hasher,
		tokens:     tokens,
		totp:       codes,
		log:        log,
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, b.sink)

	b.built = true
	return engine, nil
}
