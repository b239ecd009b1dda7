package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	nexus "github.com/pixelforge/nexus"
	"github.com/pixelforge/nexus/fieldcrypt"
)

type projectRecord struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Description  string    `bson:"description"`
	Deadline     time.Time `bson:"deadline"`
	Status       string    `bson:"status"`
	LeadID       string    `bson:"projectLead,omitempty"`
	DeveloperIDs []string  `bson:"assignedDevelopers"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// ProjectStore backs the project collection with MongoDB. Descriptions are
// encrypted before they leave the process and decrypted on every read.
type ProjectStore struct {
	coll   *mongo.Collection
	cipher *fieldcrypt.Cipher
}

// NewProjectStore binds the store to db's project collection, encrypting
// descriptions with cipher.
func NewProjectStore(db *mongo.Database, cipher *fieldcrypt.Cipher) *ProjectStore {
	return &ProjectStore{
		coll:   db.Collection(projectsCollection),
		cipher: cipher,
	}
}

func (s *ProjectStore) FindByID(ctx context.Context, id string) (*nexus.Project, error) {
	var rec projectRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		return nil, mapFindErr(err)
	}
	return s.toProject(&rec), nil
}

func (s *ProjectStore) List(ctx context.Context, filter nexus.ProjectFilter) ([]*nexus.Project, error) {
	query := bson.M{}
	if filter.MemberID != "" {
		query = bson.M{"$or": []bson.M{
			{"status": string(nexus.StatusActive)},
			{"projectLead": filter.MemberID},
			{"assignedDevelopers": filter.MemberID},
		}}
	}

	cursor, err := s.coll.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*nexus.Project
	for cursor.Next(ctx) {
		var rec projectRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, s.toProject(&rec))
	}
	return out, cursor.Err()
}

func (s *ProjectStore) Insert(ctx context.Context, p *nexus.Project) (*nexus.Project, error) {
	encrypted, err := s.cipher.Encrypt(p.Description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := projectRecord{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Description:  encrypted,
		Deadline:     p.Deadline,
		Status:       string(p.Status),
		LeadID:       p.LeadID,
		DeveloperIDs: p.DeveloperIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if rec.DeveloperIDs == nil {
		rec.DeveloperIDs = []string{}
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return nil, err
	}
	return s.toProject(&rec), nil
}

func (s *ProjectStore) Update(ctx context.Context, p *nexus.Project) error {
	encrypted, err := s.cipher.Encrypt(p.Description)
	if err != nil {
		return err
	}

	developers := p.DeveloperIDs
	if developers == nil {
		developers = []string{}
	}
	res, err := s.coll.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"name":               p.Name,
		"description":        encrypted,
		"deadline":           p.Deadline,
		"status":             string(p.Status),
		"projectLead":        p.LeadID,
		"assignedDevelopers": developers,
		"updatedAt":          time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return nexus.ErrNotFound
	}
	return nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return nexus.ErrNotFound
	}
	return nil
}

func (s *ProjectStore) toProject(rec *projectRecord) *nexus.Project {
	return &nexus.Project{
		ID:           rec.ID,
		Name:         rec.Name,
		Description:  s.cipher.Decrypt(rec.Description),
		Deadline:     rec.Deadline,
		Status:       nexus.ProjectStatus(rec.Status),
		LeadID:       rec.LeadID,
		DeveloperIDs: rec.DeveloperIDs,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}
