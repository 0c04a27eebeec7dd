package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
)

// PaymentStore is the payments slice of the record store: mill payments,
// farmer payouts and advances.
type PaymentStore interface {
	AddMillPayment(ctx context.Context, p models.MillPayment, actor string) (models.MillPayment, error)
	ListMillPayments(ctx context.Context, millID *primitive.ObjectID) ([]models.MillPayment, error)
	AddFarmerPayout(ctx context.Context, p models.FarmerPayout, actor string) (models.FarmerPayout, error)
	ListFarmerPayouts(ctx context.Context, farmerID *primitive.ObjectID) ([]models.FarmerPayout, error)
	AddAdvance(ctx context.Context, a models.Advance, actor string) (models.Advance, error)
	ListAdvances(ctx context.Context, farmerID *primitive.ObjectID) ([]models.Advance, error)
}

func (r *Repository) AddMillPayment(ctx context.Context, p models.MillPayment, actor string) (models.MillPayment, error) {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = r.now()

	if _, err := r.db.Collection(collMillPayments).InsertOne(ctx, p); err != nil {
		return models.MillPayment{}, wrapWriteErr("add mill payment", err)
	}
	r.logChange(ctx, collMillPayments, p.ID.Hex(), models.ChangeInsert, actor, nil, p)
	return p, nil
}

// ListMillPayments returns payments newest first, optionally for one mill.
func (r *Repository) ListMillPayments(ctx context.Context, millID *primitive.ObjectID) ([]models.MillPayment, error) {
	q := bson.M{}
	if millID != nil {
		q["mill_id"] = *millID
	}

	cur, err := r.db.Collection(collMillPayments).Find(ctx, q,
		options.Find().SetSort(bson.D{{Key: "payment_date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list mill payments: %w", err)
	}

	var payments []models.MillPayment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("decode mill payments: %w", err)
	}
	return payments, nil
}

func (r *Repository) AddFarmerPayout(ctx context.Context, p models.FarmerPayout, actor string) (models.FarmerPayout, error) {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = r.now()

	if _, err := r.db.Collection(collFarmerPayouts).InsertOne(ctx, p); err != nil {
		return models.FarmerPayout{}, wrapWriteErr("add farmer payout", err)
	}
	r.logChange(ctx, collFarmerPayouts, p.ID.Hex(), models.ChangeInsert, actor, nil, p)
	return p, nil
}

// ListFarmerPayouts returns payouts newest first, optionally for one farmer.
func (r *Repository) ListFarmerPayouts(ctx context.Context, farmerID *primitive.ObjectID) ([]models.FarmerPayout, error) {
	q := bson.M{}
	if farmerID != nil {
		q["farmer_id"] = *farmerID
	}

	cur, err := r.db.Collection(collFarmerPayouts).Find(ctx, q,
		options.Find().SetSort(bson.D{{Key: "payment_date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list farmer payouts: %w", err)
	}

	var payouts []models.FarmerPayout
	if err := cur.All(ctx, &payouts); err != nil {
		return nil, fmt.Errorf("decode farmer payouts: %w", err)
	}
	return payouts, nil
}

func (r *Repository) AddAdvance(ctx context.Context, a models.Advance, actor string) (models.Advance, error) {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = r.now()

	if _, err := r.db.Collection(collAdvances).InsertOne(ctx, a); err != nil {
		return models.Advance{}, wrapWriteErr("add advance", err)
	}
	r.logChange(ctx, collAdvances, a.ID.Hex(), models.ChangeInsert, actor, nil, a)
	return a, nil
}

// ListAdvances returns advances newest first, optionally for one farmer.
func (r *Repository) ListAdvances(ctx context.Context, farmerID *primitive.ObjectID) ([]models.Advance, error) {
	q := bson.M{}
	if farmerID != nil {
		q["farmer_id"] = *farmerID
	}

	cur, err := r.db.Collection(collAdvances).Find(ctx, q,
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list advances: %w", err)
	}

	var advances []models.Advance
	if err := cur.All(ctx, &advances); err != nil {
		return nil, fmt.Errorf("decode advances: %w", err)
	}
	return advances, nil
}

// SaveDailySummary stores one day's aggregated ledger figures, replacing any
// earlier summary for the same date.
func (r *Repository) SaveDailySummary(ctx context.Context, s models.DailySummary) error {
	s.CreatedAt = r.now()
	_, err := r.db.Collection(collSummaries).ReplaceOne(ctx,
		bson.M{"date": s.Date}, s, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save daily summary: %w", err)
	}
	return nil
}
