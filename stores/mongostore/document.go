package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	nexus "github.com/pixelforge/nexus"
)

type documentRecord struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	FilePath   string    `bson:"filePath"`
	UploadedBy string    `bson:"uploadedBy"`
	ProjectID  string    `bson:"project"`
	CreatedAt  time.Time `bson:"createdAt"`
}

// DocumentStore backs document metadata with MongoDB. The bytes themselves
// live in a BlobStore keyed by FilePath.
type DocumentStore struct {
	coll *mongo.Collection
}

func NewDocumentStore(db *mongo.Database) *DocumentStore {
	return &DocumentStore{coll: db.Collection(documentsCollection)}
}

func (s *DocumentStore) Insert(ctx context.Context, d *nexus.Document) (*nexus.Document, error) {
	rec := documentRecord{
		ID:         uuid.NewString(),
		Name:       d.Name,
		FilePath:   d.FilePath,
		UploadedBy: d.UploadedBy,
		ProjectID:  d.ProjectID,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return nil, err
	}
	return toDocument(&rec), nil
}

func (s *DocumentStore) FindByID(ctx context.Context, id string) (*nexus.Document, error) {
	var rec documentRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		return nil, mapFindErr(err)
	}
	return toDocument(&rec), nil
}

func (s *DocumentStore) ListByProject(ctx context.Context, projectID string) ([]*nexus.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"project": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*nexus.Document
	for cursor.Next(ctx) {
		var rec documentRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, toDocument(&rec))
	}
	return out, cursor.Err()
}

func toDocument(rec *documentRecord) *nexus.Document {
	return &nexus.Document{
		ID:         rec.ID,
		Name:       rec.Name,
		FilePath:   rec.FilePath,
		UploadedBy: rec.UploadedBy,
		ProjectID:  rec.ProjectID,
		CreatedAt:  rec.CreatedAt,
	}
}
