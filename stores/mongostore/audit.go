package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	nexus "github.com/pixelforge/nexus"
)

// AuditSink persists audit events into the auditlogs collection. Writes are
// best-effort: a failed insert is logged and the event is dropped, the caller
// never sees the error.
type AuditSink struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewAuditSink(db *mongo.Database, log *zap.Logger) *AuditSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditSink{coll: db.Collection(auditCollection), log: log}
}

func (s *AuditSink) Emit(ctx context.Context, event nexus.AuditEvent) {
	if _, err := s.coll.InsertOne(ctx, event); err != nil {
		s.log.Warn("audit insert failed",
			zap.String("action", event.Action),
			zap.Error(err))
	}
}
