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

type principalRecord struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password"`
	Role         string    `bson:"role"`
	MFASecret    string    `bson:"mfaSecret,omitempty"`
	MFAEnabled   bool      `bson:"isMfaEnabled"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// PrincipalStore backs the two principal collections with MongoDB.
type PrincipalStore struct {
	users  *mongo.Collection
	admins *mongo.Collection
}

// NewPrincipalStore binds the store to the users and admins collections of
// db.
func NewPrincipalStore(db *mongo.Database) *PrincipalStore {
	return &PrincipalStore{
		users:  db.Collection(usersCollection),
		admins: db.Collection(adminsCollection),
	}
}

func (s *PrincipalStore) collection(variant nexus.Variant) *mongo.Collection {
	if variant == nexus.VariantAdmin {
		return s.admins
	}
	return s.users
}

func (s *PrincipalStore) FindByEmail(ctx context.Context, variant nexus.Variant, email string) (*nexus.Principal, error) {
	var rec principalRecord
	err := s.collection(variant).FindOne(ctx,
		bson.M{"email": email},
		options.FindOne().SetCollation(caseInsensitive()),
	).Decode(&rec)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return rec.toPrincipal(variant), nil
}

func (s *PrincipalStore) FindByID(ctx context.Context, id string) (*nexus.Principal, error) {
	for _, variant := range []nexus.Variant{nexus.VariantUser, nexus.VariantAdmin} {
		var rec principalRecord
		err := s.collection(variant).FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
		if err == nil {
			return rec.toPrincipal(variant), nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}
	}
	return nil, nexus.ErrNotFound
}

func (s *PrincipalStore) Insert(ctx context.Context, variant nexus.Variant, p *nexus.Principal) (*nexus.Principal, error) {
	now := time.Now().UTC()
	rec := principalRecord{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         string(p.Role),
		MFASecret:    p.MFASecret,
		MFAEnabled:   p.MFAEnabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.collection(variant).InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, nexus.ErrDuplicateCredential
		}
		return nil, err
	}
	return rec.toPrincipal(variant), nil
}

func (s *PrincipalStore) Update(ctx context.Context, p *nexus.Principal) error {
	res, err := s.collection(p.Variant).UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"name":         p.Name,
		"email":        p.Email,
		"password":     p.PasswordHash,
		"role":         string(p.Role),
		"mfaSecret":    p.MFASecret,
		"isMfaEnabled": p.MFAEnabled,
		"updatedAt":    time.Now().UTC(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nexus.ErrDuplicateCredential
		}
		return err
	}
	if res.MatchedCount == 0 {
		return nexus.ErrNotFound
	}
	return nil
}

func (s *PrincipalStore) List(ctx context.Context, variant nexus.Variant) ([]*nexus.Principal, error) {
	cursor, err := s.collection(variant).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*nexus.Principal
	for cursor.Next(ctx) {
		var rec principalRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, rec.toPrincipal(variant))
	}
	return out, cursor.Err()
}

func (r *principalRecord) toPrincipal(variant nexus.Variant) *nexus.Principal {
	return &nexus.Principal{
		ID:           r.ID,
		Variant:      variant,
		Name:         r.Name,
		Email:        r.Email,
		Role:         nexus.Role(r.Role),
		PasswordHash: r.PasswordHash,
		MFASecret:    r.MFASecret,
		MFAEnabled:   r.MFAEnabled,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
