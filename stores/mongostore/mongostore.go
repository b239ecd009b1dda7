// Package mongostore implements the repository contracts on MongoDB, the
// production document store behind the project-tracking backend.
//
// Email matching is case-insensitive through a strength-2 collation applied
// both to lookups and to the unique indexes, so the database itself is the
// arbiter of duplicate registrations.
package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	nexus "github.com/pixelforge/nexus"
)

const (
	usersCollection     = "users"
	adminsCollection    = "admins"
	projectsCollection  = "projects"
	documentsCollection = "documents"
	auditCollection     = "auditlogs"
)

func caseInsensitive() *options.Collation {
	return &options.Collation{Locale: "en", Strength: 2}
}

// EnsureIndexes creates the unique email indexes and the query indexes the
// adapters rely on. Call once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	emailUnique := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetCollation(caseInsensitive()),
	}
	for _, name := range []string{usersCollection, adminsCollection} {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, emailUnique); err != nil {
			return err
		}
	}

	projectIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "projectLead", Value: 1}}},
		{Keys: bson.D{{Key: "assignedDevelopers", Value: 1}}},
	}
	if _, err := db.Collection(projectsCollection).Indexes().CreateMany(ctx, projectIndexes); err != nil {
		return err
	}

	documentIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "project", Value: 1}, {Key: "createdAt", Value: -1}},
	}
	if _, err := db.Collection(documentsCollection).Indexes().CreateOne(ctx, documentIndex); err != nil {
		return err
	}

	auditIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "principalId", Value: 1}, {Key: "createdAt", Value: -1}},
	}
	_, err := db.Collection(auditCollection).Indexes().CreateOne(ctx, auditIndex)
	return err
}

func mapFindErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return nexus.ErrNotFound
	}
	return err
}
