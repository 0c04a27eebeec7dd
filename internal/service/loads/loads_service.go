// Package loads orchestrates load intake: validation against current
// settings, settlement computation, load numbering and persistence.
package loads

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
	"github.com/ricetradesolutions/riceledger/internal/engine"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
)

// ErrLoadNumberExhausted is returned when a unique load number could not be
// generated after several attempts.
var ErrLoadNumberExhausted = errors.New("could not generate a unique load number")

const maxLoadNumberAttempts = 5

// Store is the record-store slice the loads service depends on.
type Store interface {
	mongodb.SettingsStore
	mongodb.LoadStore
}

// Service wires together the settlement engine and the record store.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	rnd    *rand.Rand
}

// NewService builds a loads service. The clock and random source are
// injectable so tests can pin them.
func NewService(store Store, logger *zap.Logger, now func() time.Time, rnd *rand.Rand) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{store: store, logger: logger, now: now, rnd: rnd}
}

// CreateRequest carries everything needed to record a new load.
type CreateRequest struct {
	FarmerID  primitive.ObjectID `json:"farmer_id"`
	MillID    primitive.ObjectID `json:"mill_id"`
	VehicleID primitive.ObjectID `json:"vehicle_id"`
	Notes     string             `json:"notes"`
	engine.LoadInput
}

// Create validates the input against the current settings, computes the
// settlement snapshot and persists the load under a fresh load number.
func (s *Service) Create(ctx context.Context, req CreateRequest, actor string) (models.Load, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return models.Load{}, fmt.Errorf("load settings: %w", err)
	}

	if err := engine.ValidateLoadInput(req.LoadInput, s.now()); err != nil {
		return models.Load{}, err
	}

	settlement, err := engine.ComputeSettlement(settings, req.LoadInput)
	if err != nil {
		return models.Load{}, err
	}

	load := models.Load{
		Date:                     req.Date,
		FarmerID:                 req.FarmerID,
		MillID:                   req.MillID,
		VehicleID:                req.VehicleID,
		Case:                     req.Case,
		GrossKg:                  req.GrossKg,
		TareKg:                   req.TareKg,
		DeclaredBags:             req.DeclaredBags,
		BuyRatePerBag:            req.BuyRatePerBag,
		SellRatePerBag:           req.SellRatePerBag,
		CommissionPolicy:         req.Policy,
		SplitPercent:             req.SplitPercent,
		UseDeclaredForCommission: req.UseDeclaredForCommission,
		Expenses:                 req.Expenses,
		Settlement:               settlement,
		MillPaymentStatus:        models.PaymentPending,
		FarmerPaymentStatus:      models.PaymentPending,
		Notes:                    req.Notes,
	}

	// Load numbers carry a random component, so a collision is possible on
	// busy days. Retry with a fresh draw before giving up.
	for attempt := 0; attempt < maxLoadNumberAttempts; attempt++ {
		load.LoadNumber = engine.GenerateLoadNumber(req.Date, s.rnd)

		created, err := s.store.AddLoad(ctx, load, actor)
		if err == nil {
			s.logger.Info("load recorded",
				zap.String("load_number", created.LoadNumber),
				zap.Float64("farmer_payable", created.Settlement.FarmerPayableRounded),
				zap.Float64("mill_receivable", created.Settlement.MillReceivableRounded))
			return created, nil
		}
		if !errors.Is(err, mongodb.ErrDuplicate) {
			return models.Load{}, fmt.Errorf("persist load: %w", err)
		}
		s.logger.Debug("load number collision, retrying", zap.String("load_number", load.LoadNumber))
	}

	return models.Load{}, ErrLoadNumberExhausted
}

// Preview runs the settlement computation without persisting anything,
// letting the operator check the numbers before committing a load.
func (s *Service) Preview(ctx context.Context, in engine.LoadInput) (models.Settlement, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return models.Settlement{}, fmt.Errorf("load settings: %w", err)
	}

	if err := engine.ValidateLoadInput(in, s.now()); err != nil {
		return models.Settlement{}, err
	}

	return engine.ComputeSettlement(settings, in)
}

// UpdateRequest carries the editable fields of an existing load.
type UpdateRequest struct {
	Notes string `json:"notes"`
	engine.LoadInput
}

// Update rewrites a load's core fields and recomputes its settlement under
// the current settings. Payment tracking is carried over untouched; an edit
// never silently rewrites what has already been paid.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req UpdateRequest, actor string) (models.Load, error) {
	existing, err := s.store.GetLoad(ctx, id)
	if err != nil {
		return models.Load{}, err
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return models.Load{}, fmt.Errorf("load settings: %w", err)
	}

	if err := engine.ValidateLoadInput(req.LoadInput, s.now()); err != nil {
		return models.Load{}, err
	}

	settlement, err := engine.ComputeSettlement(settings, req.LoadInput)
	if err != nil {
		return models.Load{}, err
	}

	existing.Date = req.Date
	existing.Case = req.Case
	existing.GrossKg = req.GrossKg
	existing.TareKg = req.TareKg
	existing.DeclaredBags = req.DeclaredBags
	existing.BuyRatePerBag = req.BuyRatePerBag
	existing.SellRatePerBag = req.SellRatePerBag
	existing.CommissionPolicy = req.Policy
	existing.SplitPercent = req.SplitPercent
	existing.UseDeclaredForCommission = req.UseDeclaredForCommission
	existing.Expenses = req.Expenses
	existing.Settlement = settlement
	existing.Notes = req.Notes

	updated, err := s.store.UpdateLoad(ctx, existing, actor)
	if err != nil {
		return models.Load{}, fmt.Errorf("update load: %w", err)
	}

	s.logger.Info("load updated",
		zap.String("load_number", updated.LoadNumber),
		zap.Int("version", updated.Version))
	return updated, nil
}

// Get returns a single load by ID.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.Load, error) {
	return s.store.GetLoad(ctx, id)
}

// GetByNumber returns a single load by its human-facing number.
func (s *Service) GetByNumber(ctx context.Context, number string) (models.Load, error) {
	return s.store.GetLoadByNumber(ctx, number)
}

// List returns loads matching the filter, oldest first.
func (s *Service) List(ctx context.Context, filter mongodb.LoadFilter) ([]models.Load, error) {
	return s.store.ListLoads(ctx, filter)
}

// Delete soft-deletes a load. History and payment records stay in place.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, actor string) error {
	return s.store.SoftDeleteLoad(ctx, id, actor)
}

// Invoice builds the ADD/LESS breakdown of the mill's bill for a load.
func (s *Service) Invoice(ctx context.Context, id primitive.ObjectID) (engine.Invoice, error) {
	load, err := s.store.GetLoad(ctx, id)
	if err != nil {
		return engine.Invoice{}, err
	}
	return engine.InvoiceBreakdown(load), nil
}

// Profit breaks down the broker's take on a single load.
func (s *Service) Profit(ctx context.Context, id primitive.ObjectID) (engine.Profit, error) {
	load, err := s.store.GetLoad(ctx, id)
	if err != nil {
		return engine.Profit{}, err
	}
	return engine.CalculateProfit(load), nil
}
