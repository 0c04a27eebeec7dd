package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
)

// MasterStore is the master-data slice of the record store: farmers, mills
// and vehicles.
type MasterStore interface {
	AddFarmer(ctx context.Context, f models.Farmer, actor string) (models.Farmer, error)
	GetFarmer(ctx context.Context, id primitive.ObjectID) (models.Farmer, error)
	ListFarmers(ctx context.Context, includeInactive bool) ([]models.Farmer, error)
	UpdateFarmer(ctx context.Context, f models.Farmer, actor string) (models.Farmer, error)
	SoftDeleteFarmer(ctx context.Context, id primitive.ObjectID, actor string) error

	AddMill(ctx context.Context, m models.Mill, actor string) (models.Mill, error)
	GetMill(ctx context.Context, id primitive.ObjectID) (models.Mill, error)
	ListMills(ctx context.Context, includeInactive bool) ([]models.Mill, error)
	UpdateMill(ctx context.Context, m models.Mill, actor string) (models.Mill, error)
	SoftDeleteMill(ctx context.Context, id primitive.ObjectID, actor string) error

	AddVehicle(ctx context.Context, v models.Vehicle, actor string) (models.Vehicle, error)
	GetVehicle(ctx context.Context, id primitive.ObjectID) (models.Vehicle, error)
	ListVehicles(ctx context.Context, includeInactive bool) ([]models.Vehicle, error)
	UpdateVehicle(ctx context.Context, v models.Vehicle, actor string) (models.Vehicle, error)
	SoftDeleteVehicle(ctx context.Context, id primitive.ObjectID, actor string) error
}

func activeFilter(includeInactive bool) bson.M {
	if includeInactive {
		return bson.M{}
	}
	return bson.M{"active": true}
}

func listSorted[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sortKey string) ([]T, error) {
	cur, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll.Name(), err)
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func getByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (T, error) {
	var out T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, ErrNotFound
	}
	if err != nil {
		return out, fmt.Errorf("get %s %s: %w", coll.Name(), id.Hex(), err)
	}
	return out, nil
}

// Farmers.

func (r *Repository) AddFarmer(ctx context.Context, f models.Farmer, actor string) (models.Farmer, error) {
	f.ID = primitive.NewObjectID()
	f.Active = true
	f.Version = 1
	f.CreatedAt = r.now()
	f.UpdatedAt = f.CreatedAt

	if _, err := r.db.Collection(collFarmers).InsertOne(ctx, f); err != nil {
		return models.Farmer{}, wrapWriteErr("add farmer", err)
	}
	r.logChange(ctx, collFarmers, f.ID.Hex(), models.ChangeInsert, actor, nil, f)
	return f, nil
}

func (r *Repository) GetFarmer(ctx context.Context, id primitive.ObjectID) (models.Farmer, error) {
	return getByID[models.Farmer](ctx, r.db.Collection(collFarmers), id)
}

func (r *Repository) ListFarmers(ctx context.Context, includeInactive bool) ([]models.Farmer, error) {
	return listSorted[models.Farmer](ctx, r.db.Collection(collFarmers), activeFilter(includeInactive), "name")
}

func (r *Repository) UpdateFarmer(ctx context.Context, f models.Farmer, actor string) (models.Farmer, error) {
	before, err := r.GetFarmer(ctx, f.ID)
	if err != nil {
		return models.Farmer{}, err
	}

	f.Active = before.Active
	f.Version = before.Version + 1
	f.CreatedAt = before.CreatedAt
	f.UpdatedAt = r.now()

	if _, err := r.db.Collection(collFarmers).ReplaceOne(ctx, bson.M{"_id": f.ID}, f); err != nil {
		return models.Farmer{}, wrapWriteErr("update farmer", err)
	}
	r.logChange(ctx, collFarmers, f.ID.Hex(), models.ChangeUpdate, actor, before, f)
	return f, nil
}

func (r *Repository) SoftDeleteFarmer(ctx context.Context, id primitive.ObjectID, actor string) error {
	return r.softDelete(ctx, collFarmers, id, actor)
}

// Mills.

func (r *Repository) AddMill(ctx context.Context, m models.Mill, actor string) (models.Mill, error) {
	m.ID = primitive.NewObjectID()
	m.Active = true
	m.Version = 1
	m.CreatedAt = r.now()
	m.UpdatedAt = m.CreatedAt

	if _, err := r.db.Collection(collMills).InsertOne(ctx, m); err != nil {
		return models.Mill{}, wrapWriteErr("add mill", err)
	}
	r.logChange(ctx, collMills, m.ID.Hex(), models.ChangeInsert, actor, nil, m)
	return m, nil
}

func (r *Repository) GetMill(ctx context.Context, id primitive.ObjectID) (models.Mill, error) {
	return getByID[models.Mill](ctx, r.db.Collection(collMills), id)
}

func (r *Repository) ListMills(ctx context.Context, includeInactive bool) ([]models.Mill, error) {
	return listSorted[models.Mill](ctx, r.db.Collection(collMills), activeFilter(includeInactive), "name")
}

func (r *Repository) UpdateMill(ctx context.Context, m models.Mill, actor string) (models.Mill, error) {
	before, err := r.GetMill(ctx, m.ID)
	if err != nil {
		return models.Mill{}, err
	}

	m.Active = before.Active
	m.Version = before.Version + 1
	m.CreatedAt = before.CreatedAt
	m.UpdatedAt = r.now()

	if _, err := r.db.Collection(collMills).ReplaceOne(ctx, bson.M{"_id": m.ID}, m); err != nil {
		return models.Mill{}, wrapWriteErr("update mill", err)
	}
	r.logChange(ctx, collMills, m.ID.Hex(), models.ChangeUpdate, actor, before, m)
	return m, nil
}

func (r *Repository) SoftDeleteMill(ctx context.Context, id primitive.ObjectID, actor string) error {
	return r.softDelete(ctx, collMills, id, actor)
}

// Vehicles.

func (r *Repository) AddVehicle(ctx context.Context, v models.Vehicle, actor string) (models.Vehicle, error) {
	v.ID = primitive.NewObjectID()
	v.Active = true
	v.Version = 1
	v.CreatedAt = r.now()
	v.UpdatedAt = v.CreatedAt

	if _, err := r.db.Collection(collVehicles).InsertOne(ctx, v); err != nil {
		return models.Vehicle{}, wrapWriteErr("add vehicle", err)
	}
	r.logChange(ctx, collVehicles, v.ID.Hex(), models.ChangeInsert, actor, nil, v)
	return v, nil
}

func (r *Repository) GetVehicle(ctx context.Context, id primitive.ObjectID) (models.Vehicle, error) {
	return getByID[models.Vehicle](ctx, r.db.Collection(collVehicles), id)
}

func (r *Repository) ListVehicles(ctx context.Context, includeInactive bool) ([]models.Vehicle, error) {
	return listSorted[models.Vehicle](ctx, r.db.Collection(collVehicles), activeFilter(includeInactive), "number")
}

func (r *Repository) UpdateVehicle(ctx context.Context, v models.Vehicle, actor string) (models.Vehicle, error) {
	before, err := r.GetVehicle(ctx, v.ID)
	if err != nil {
		return models.Vehicle{}, err
	}

	v.Active = before.Active
	v.Version = before.Version + 1
	v.CreatedAt = before.CreatedAt
	v.UpdatedAt = r.now()

	if _, err := r.db.Collection(collVehicles).ReplaceOne(ctx, bson.M{"_id": v.ID}, v); err != nil {
		return models.Vehicle{}, wrapWriteErr("update vehicle", err)
	}
	r.logChange(ctx, collVehicles, v.ID.Hex(), models.ChangeUpdate, actor, before, v)
	return v, nil
}

func (r *Repository) SoftDeleteVehicle(ctx context.Context, id primitive.ObjectID, actor string) error {
	return r.softDelete(ctx, collVehicles, id, actor)
}

// softDelete flags a record inactive and bumps its version. The record stays
// in place for history and for loads that still reference it.
func (r *Repository) softDelete(ctx context.Context, coll string, id primitive.ObjectID, actor string) error {
	res := r.db.Collection(coll).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{"active": false, "updated_at": r.now()},
			"$inc": bson.M{"version": 1},
		})

	var before bson.M
	if err := res.Decode(&before); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("soft delete %s %s: %w", coll, id.Hex(), err)
	}

	r.logChange(ctx, coll, id.Hex(), models.ChangeDelete, actor, before, nil)
	return nil
}
