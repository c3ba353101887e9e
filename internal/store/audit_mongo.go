package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aurelia-health/aurelia-backend/internal/database"
	"github.com/aurelia-health/aurelia-backend/internal/models"
)

const auditCollection = "audit_records"

// MongoAuditSink appends audit records. Records are never updated or
// deleted through this store.
type MongoAuditSink struct{}

func (MongoAuditSink) Append(ctx context.Context, record models.AuditRecord) error {
	record.ID = primitive.NewObjectID()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := database.DB.Collection(auditCollection).InsertOne(ctx, record)
	return err
}

// EnsureAuditIndexes creates the actor/time lookup index.
func EnsureAuditIndexes(ctx context.Context) error {
	_, err := database.DB.Collection(auditCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
