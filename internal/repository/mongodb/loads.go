package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
)

// LoadFilter narrows a load listing. Zero-valued members are ignored.
type LoadFilter struct {
	From                *time.Time
	To                  *time.Time
	FarmerID            *primitive.ObjectID
	MillID              *primitive.ObjectID
	MillPaymentStatus   models.PaymentStatus
	FarmerPaymentStatus models.PaymentStatus
	IncludeInactive     bool
}

// LoadStore is the loads slice of the record store.
type LoadStore interface {
	AddLoad(ctx context.Context, load models.Load, actor string) (models.Load, error)
	GetLoad(ctx context.Context, id primitive.ObjectID) (models.Load, error)
	GetLoadByNumber(ctx context.Context, number string) (models.Load, error)
	ListLoads(ctx context.Context, filter LoadFilter) ([]models.Load, error)
	UpdateLoad(ctx context.Context, load models.Load, actor string) (models.Load, error)
	SoftDeleteLoad(ctx context.Context, id primitive.ObjectID, actor string) error
}

func (f LoadFilter) query() bson.M {
	q := bson.M{}
	if !f.IncludeInactive {
		q["active"] = true
	}
	if f.From != nil || f.To != nil {
		dateRange := bson.M{}
		if f.From != nil {
			dateRange["$gte"] = *f.From
		}
		if f.To != nil {
			dateRange["$lte"] = *f.To
		}
		q["date"] = dateRange
	}
	if f.FarmerID != nil {
		q["farmer_id"] = *f.FarmerID
	}
	if f.MillID != nil {
		q["mill_id"] = *f.MillID
	}
	if f.MillPaymentStatus != "" {
		q["mill_payment_status"] = f.MillPaymentStatus
	}
	if f.FarmerPaymentStatus != "" {
		q["farmer_payment_status"] = f.FarmerPaymentStatus
	}
	return q
}

// AddLoad inserts a load with its computed settlement snapshot.
func (r *Repository) AddLoad(ctx context.Context, load models.Load, actor string) (models.Load, error) {
	load.ID = primitive.NewObjectID()
	load.Active = true
	load.Version = 1
	load.CreatedAt = r.now()
	load.UpdatedAt = load.CreatedAt

	if _, err := r.db.Collection(collLoads).InsertOne(ctx, load); err != nil {
		return models.Load{}, wrapWriteErr("add load", err)
	}
	r.logChange(ctx, collLoads, load.ID.Hex(), models.ChangeInsert, actor, nil, load)
	return load, nil
}

func (r *Repository) GetLoad(ctx context.Context, id primitive.ObjectID) (models.Load, error) {
	return getByID[models.Load](ctx, r.db.Collection(collLoads), id)
}

// GetLoadByNumber resolves a load by its human-readable number.
func (r *Repository) GetLoadByNumber(ctx context.Context, number string) (models.Load, error) {
	var load models.Load
	err := r.db.Collection(collLoads).FindOne(ctx, bson.M{"load_number": number}).Decode(&load)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Load{}, ErrNotFound
	}
	if err != nil {
		return models.Load{}, fmt.Errorf("get load %s: %w", number, err)
	}
	return load, nil
}

// ListLoads returns matching loads ordered by date then creation, oldest
// first. FIFO payment allocation depends on this ordering.
func (r *Repository) ListLoads(ctx context.Context, filter LoadFilter) ([]models.Load, error) {
	cur, err := r.db.Collection(collLoads).Find(ctx, filter.query(),
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}

	var loads []models.Load
	if err := cur.All(ctx, &loads); err != nil {
		return nil, fmt.Errorf("decode loads: %w", err)
	}
	return loads, nil
}

// UpdateLoad replaces a load document, bumping its version. Last write wins;
// the version counter records that an overwrite happened.
func (r *Repository) UpdateLoad(ctx context.Context, load models.Load, actor string) (models.Load, error) {
	before, err := r.GetLoad(ctx, load.ID)
	if err != nil {
		return models.Load{}, err
	}

	load.Active = before.Active
	load.Version = before.Version + 1
	load.CreatedAt = before.CreatedAt
	load.UpdatedAt = r.now()

	if _, err := r.db.Collection(collLoads).ReplaceOne(ctx, bson.M{"_id": load.ID}, load); err != nil {
		return models.Load{}, wrapWriteErr("update load", err)
	}
	r.logChange(ctx, collLoads, load.ID.Hex(), models.ChangeUpdate, actor, before, load)
	return load, nil
}

func (r *Repository) SoftDeleteLoad(ctx context.Context, id primitive.ObjectID, actor string) error {
	return r.softDelete(ctx, collLoads, id, actor)
}
