package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aurelia-health/aurelia-backend/internal/clinical"
	"github.com/aurelia-health/aurelia-backend/internal/database"
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

const entriesCollection = "entries"

// MongoEntryStore persists journal entries in the entries collection.
type MongoEntryStore struct{}

func (MongoEntryStore) Create(ctx context.Context, entry *models.Entry) error {
	now := time.Now()
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := database.DB.Collection(entriesCollection).InsertOne(ctx, entry)
	return err
}

func (MongoEntryStore) Update(ctx context.Context, entry *models.Entry) error {
	entry.UpdatedAt = time.Now()

	res, err := database.DB.Collection(entriesCollection).ReplaceOne(ctx,
		bson.M{"_id": entry.ID, "patient_id": entry.PatientID}, entry)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return clinical.ErrNotFound
	}
	return nil
}

func (MongoEntryStore) Delete(ctx context.Context, entryID, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return clinical.ErrNotFound
	}

	res, err := database.DB.Collection(entriesCollection).DeleteOne(ctx,
		bson.M{"_id": oid, "patient_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return clinical.ErrNotFound
	}
	return nil
}

func (MongoEntryStore) GetByID(ctx context.Context, entryID string) (models.Entry, error) {
	oid, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return models.Entry{}, clinical.ErrNotFound
	}

	var entry models.Entry
	err = database.DB.Collection(entriesCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return models.Entry{}, clinical.ErrNotFound
	}
	if err != nil {
		return models.Entry{}, err
	}
	return entry, nil
}

func (MongoEntryStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := database.DB.Collection(entriesCollection).Find(ctx, bson.M{"patient_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// StripPermission removes professionalID from both the raw permission list
// and the computed policy of every entry the owner has. Pulling from both
// arrays leaves each policy exactly as DerivePolicy would recompute it: the
// permission list never affects a policy's kind, only its id list.
func (MongoEntryStore) StripPermission(ctx context.Context, ownerID, professionalID string) error {
	_, err := database.DB.Collection(entriesCollection).UpdateMany(ctx,
		bson.M{"patient_id": ownerID},
		bson.M{"$pull": bson.M{
			"permissions":             professionalID,
			"policy.professional_ids": professionalID,
		}})
	return err
}

// EnsureEntryIndexes creates the owner-listing index.
func EnsureEntryIndexes(ctx context.Context) error {
	_, err := database.DB.Collection(entriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
