package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
)

// SettingsStore is the settings slice of the record store.
type SettingsStore interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings, actor string) error
	SeedSettings(ctx context.Context) (models.Settings, error)
}

// GetSettings loads the singleton settings document.
func (r *Repository) GetSettings(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	err := r.db.Collection(collSettings).FindOne(ctx, bson.M{"_id": models.SettingsID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Settings{}, ErrNotFound
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// SaveSettings upserts the singleton settings document. The caller validates
// before saving; loads already persisted keep their stored figures.
func (r *Repository) SaveSettings(ctx context.Context, s models.Settings, actor string) error {
	before, err := r.GetSettings(ctx)
	hadBefore := err == nil

	s.ID = models.SettingsID
	s.UpdatedAt = r.now()

	_, err = r.db.Collection(collSettings).ReplaceOne(ctx,
		bson.M{"_id": models.SettingsID}, s, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	action := models.ChangeInsert
	var beforeDoc interface{}
	if hadBefore {
		action = models.ChangeUpdate
		beforeDoc = before
	}
	r.logChange(ctx, collSettings, "1", action, actor, beforeDoc, s)
	return nil
}

// SeedSettings writes the default settings if none exist yet and returns the
// document in force afterwards.
func (r *Repository) SeedSettings(ctx context.Context) (models.Settings, error) {
	existing, err := r.GetSettings(ctx)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.Settings{}, err
	}

	defaults := models.DefaultSettings()
	defaults.UpdatedAt = r.now()
	if _, err := r.db.Collection(collSettings).InsertOne(ctx, defaults); err != nil {
		return models.Settings{}, fmt.Errorf("seed settings: %w", err)
	}
	r.logger.Info("seeded default settings")
	return defaults, nil
}
