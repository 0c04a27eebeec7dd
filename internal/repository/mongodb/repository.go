// Package mongodb implements the ledger's keyed record store: settings,
// farmers, mills, vehicles, loads, payments and the audit change log.
// Deletes are soft (an active flag); updates bump a version counter and
// append a before/after entry to the change log.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
)

// ErrNotFound is returned when a record does not exist or has been
// soft-deleted.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique index rejects a write, e.g. a load
// number collision.
var ErrDuplicate = errors.New("duplicate record")

const (
	collSettings      = "settings"
	collFarmers       = "farmers"
	collMills         = "mills"
	collVehicles      = "vehicles"
	collLoads         = "loads"
	collMillPayments  = "mill_payments"
	collFarmerPayouts = "farmer_payouts"
	collAdvances      = "advances"
	collChangeLog     = "change_log"
	collSummaries     = "daily_summaries"
)

// Repository is the MongoDB-backed record store.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, uri, dbName string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
		now:    time.Now,
	}, nil
}

// EnsureIndexes creates the unique and query indexes the ledger relies on.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{collLoads, mongo.IndexModel{Keys: bson.D{{Key: "load_number", Value: 1}}, Options: unique}},
		{collLoads, mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}}},
		{collLoads, mongo.IndexModel{Keys: bson.D{{Key: "farmer_id", Value: 1}}}},
		{collLoads, mongo.IndexModel{Keys: bson.D{{Key: "mill_id", Value: 1}}}},
		{collVehicles, mongo.IndexModel{Keys: bson.D{{Key: "number", Value: 1}}, Options: unique}},
		{collMillPayments, mongo.IndexModel{Keys: bson.D{{Key: "mill_id", Value: 1}}}},
		{collFarmerPayouts, mongo.IndexModel{Keys: bson.D{{Key: "farmer_id", Value: 1}}}},
		{collChangeLog, mongo.IndexModel{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "at", Value: 1}}}},
	}

	for _, idx := range indexes {
		if _, err := r.db.Collection(idx.coll).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll, err)
		}
	}
	return nil
}

// Close disconnects the underlying client.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// logChange appends an audit entry. Audit writes are best effort: a change-log
// failure is logged but never fails the primary operation.
func (r *Repository) logChange(ctx context.Context, entity, entityID string, action models.ChangeAction, actor string, before, after interface{}) {
	entry := models.ChangeEntry{
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Actor:    actor,
		At:       r.now(),
		Before:   before,
		After:    after,
	}
	if _, err := r.db.Collection(collChangeLog).InsertOne(ctx, entry); err != nil {
		r.logger.Error("failed to append change log entry",
			zap.String("entity", entity),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

// ListChanges returns the audit history of one record, oldest first.
func (r *Repository) ListChanges(ctx context.Context, entity, entityID string) ([]models.ChangeEntry, error) {
	cur, err := r.db.Collection(collChangeLog).Find(ctx,
		bson.M{"entity": entity, "entity_id": entityID},
		options.Find().SetSort(bson.D{{Key: "at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list changes for %s/%s: %w", entity, entityID, err)
	}

	var entries []models.ChangeEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode change entries: %w", err)
	}
	return entries, nil
}

func wrapWriteErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
