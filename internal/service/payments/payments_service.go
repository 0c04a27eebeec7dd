// Package payments tracks money moving against recorded loads: mill receipts
// allocated FIFO across pending loads, farmer payouts with early-payment
// credit cuts, and advance history.
package payments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
	"github.com/ricetradesolutions/riceledger/internal/engine"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
)

// Payment amounts are rupees; anything below a paisa is rounding noise.
const settleEpsilon = 0.005

var (
	// ErrNonPositiveAmount rejects zero or negative payment amounts.
	ErrNonPositiveAmount = errors.New("payment amount must be greater than 0")
	// ErrLoadAlreadySettled rejects a payout against a fully paid load.
	ErrLoadAlreadySettled = errors.New("load is already fully paid out")
	// ErrPayoutExceedsPending rejects a payout larger than what the farmer
	// is still owed on the load.
	ErrPayoutExceedsPending = errors.New("payout exceeds the pending amount for this load")
)

// Store is the record-store slice the payments service depends on.
type Store interface {
	mongodb.SettingsStore
	mongodb.LoadStore
	mongodb.PaymentStore
}

// Service applies incoming and outgoing payments to the ledger.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds a payments service. The clock is injectable for tests.
func NewService(store Store, logger *zap.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, logger: logger, now: now}
}

// MillPaymentRequest is a receipt from a mill.
type MillPaymentRequest struct {
	MillID      primitive.ObjectID `json:"mill_id"`
	PaymentDate time.Time          `json:"payment_date"`
	Amount      float64            `json:"amount"`
	Method      string             `json:"method"`
	Reference   string             `json:"reference"`
	Notes       string             `json:"notes"`
}

// RecordMillPayment allocates a mill receipt across that mill's unpaid loads,
// oldest first. Any remainder after every load is settled is recorded as
// unallocated on the payment itself.
func (s *Service) RecordMillPayment(ctx context.Context, req MillPaymentRequest, actor string) (models.MillPayment, error) {
	if req.Amount <= 0 {
		return models.MillPayment{}, ErrNonPositiveAmount
	}
	if req.PaymentDate.IsZero() {
		req.PaymentDate = s.now()
	}

	pending, err := s.pendingMillLoads(ctx, req.MillID)
	if err != nil {
		return models.MillPayment{}, err
	}

	payment := models.MillPayment{
		MillID:      req.MillID,
		PaymentDate: req.PaymentDate,
		Amount:      req.Amount,
		Method:      req.Method,
		Reference:   req.Reference,
		Notes:       req.Notes,
	}

	remaining := req.Amount
	for _, load := range pending {
		if remaining <= settleEpsilon {
			break
		}

		due := load.MillPending()
		if due <= settleEpsilon {
			continue
		}

		applied := due
		if remaining < due {
			applied = remaining
		}

		load.MillPaidAmount += applied
		if load.MillPending() <= settleEpsilon {
			load.MillPaymentStatus = models.PaymentFull
			paid := req.PaymentDate
			load.MillPaidDate = &paid
		} else {
			load.MillPaymentStatus = models.PaymentPartial
		}

		if _, err := s.store.UpdateLoad(ctx, load, actor); err != nil {
			return models.MillPayment{}, fmt.Errorf("apply payment to load %s: %w", load.LoadNumber, err)
		}

		payment.Allocations = append(payment.Allocations, models.PaymentAllocation{
			LoadID:     load.ID,
			LoadNumber: load.LoadNumber,
			Amount:     applied,
		})
		remaining -= applied
	}

	if remaining > settleEpsilon {
		payment.Unallocated = remaining
		s.logger.Warn("mill payment exceeds pending loads",
			zap.String("mill_id", req.MillID.Hex()),
			zap.Float64("unallocated", remaining))
	}

	created, err := s.store.AddMillPayment(ctx, payment, actor)
	if err != nil {
		return models.MillPayment{}, fmt.Errorf("persist mill payment: %w", err)
	}

	s.logger.Info("mill payment recorded",
		zap.String("mill_id", req.MillID.Hex()),
		zap.Float64("amount", req.Amount),
		zap.Int("loads_touched", len(created.Allocations)))
	return created, nil
}

// FarmerPayoutRequest is an outgoing payment to a farmer against one load.
type FarmerPayoutRequest struct {
	LoadID      primitive.ObjectID `json:"load_id"`
	PaymentDate time.Time          `json:"payment_date"`
	Amount      float64            `json:"amount"`
	Method      string             `json:"method"`
	Reference   string             `json:"reference"`
	Notes       string             `json:"notes"`
}

// RecordFarmerPayout pays a farmer against a load. On the first payout the
// early-payment credit cut is evaluated against the settings in force and,
// if eligible, locked onto the load. The settlement snapshot is never
// rewritten; the cut lives next to it.
func (s *Service) RecordFarmerPayout(ctx context.Context, req FarmerPayoutRequest, actor string) (models.FarmerPayout, error) {
	if req.Amount <= 0 {
		return models.FarmerPayout{}, ErrNonPositiveAmount
	}
	if req.PaymentDate.IsZero() {
		req.PaymentDate = s.now()
	}

	load, err := s.store.GetLoad(ctx, req.LoadID)
	if err != nil {
		return models.FarmerPayout{}, err
	}
	if load.FarmerPaymentStatus == models.PaymentFull {
		return models.FarmerPayout{}, ErrLoadAlreadySettled
	}

	var cut float64
	if load.FarmerPaidAmount == 0 && load.CreditCutAmount == 0 {
		settings, err := s.store.GetSettings(ctx)
		if err != nil {
			return models.FarmerPayout{}, fmt.Errorf("load settings: %w", err)
		}
		result := engine.CalculateCreditCut(load.Date, req.PaymentDate, load.Settlement.FarmerPayableRounded, settings)
		if result.Eligible {
			cut = result.CreditCut
			load.CreditCutAmount = cut
		}
	}

	if req.Amount > load.FarmerPending()+settleEpsilon {
		return models.FarmerPayout{}, ErrPayoutExceedsPending
	}

	load.FarmerPaidAmount += req.Amount
	if load.FarmerPending() <= settleEpsilon {
		load.FarmerPaymentStatus = models.PaymentFull
		paid := req.PaymentDate
		load.FarmerPaidDate = &paid
	} else {
		load.FarmerPaymentStatus = models.PaymentPartial
	}

	if _, err := s.store.UpdateLoad(ctx, load, actor); err != nil {
		return models.FarmerPayout{}, fmt.Errorf("apply payout to load %s: %w", load.LoadNumber, err)
	}

	payout := models.FarmerPayout{
		FarmerID:        load.FarmerID,
		LoadID:          load.ID,
		LoadNumber:      load.LoadNumber,
		PaymentDate:     req.PaymentDate,
		Amount:          req.Amount,
		CreditCutAmount: cut,
		Method:          req.Method,
		Reference:       req.Reference,
		Notes:           req.Notes,
	}

	created, err := s.store.AddFarmerPayout(ctx, payout, actor)
	if err != nil {
		return models.FarmerPayout{}, fmt.Errorf("persist farmer payout: %w", err)
	}

	s.logger.Info("farmer payout recorded",
		zap.String("load_number", load.LoadNumber),
		zap.Float64("amount", req.Amount),
		zap.Float64("credit_cut", cut))
	return created, nil
}

// PreviewCreditCut evaluates the early-payment cut a farmer would receive if
// a load were paid out on the given date, without touching the ledger.
func (s *Service) PreviewCreditCut(ctx context.Context, loadID primitive.ObjectID, paymentDate time.Time) (engine.CreditCutResult, error) {
	load, err := s.store.GetLoad(ctx, loadID)
	if err != nil {
		return engine.CreditCutResult{}, err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return engine.CreditCutResult{}, fmt.Errorf("load settings: %w", err)
	}
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}
	return engine.CalculateCreditCut(load.Date, paymentDate, load.Settlement.FarmerPayableRounded, settings), nil
}

// AdvanceRequest is money handed to a farmer ahead of settlement.
type AdvanceRequest struct {
	FarmerID primitive.ObjectID  `json:"farmer_id"`
	LoadID   *primitive.ObjectID `json:"load_id"`
	Date     time.Time           `json:"date"`
	Amount   float64             `json:"amount"`
	Notes    string              `json:"notes"`
}

// RecordAdvance appends an advance to the farmer's ledger history.
func (s *Service) RecordAdvance(ctx context.Context, req AdvanceRequest, actor string) (models.Advance, error) {
	if req.Amount <= 0 {
		return models.Advance{}, ErrNonPositiveAmount
	}
	if req.Date.IsZero() {
		req.Date = s.now()
	}

	advance := models.Advance{
		FarmerID: req.FarmerID,
		LoadID:   req.LoadID,
		Date:     req.Date,
		Amount:   req.Amount,
		Notes:    req.Notes,
	}
	return s.store.AddAdvance(ctx, advance, actor)
}

// ListMillPayments returns mill receipts, newest first.
func (s *Service) ListMillPayments(ctx context.Context, millID *primitive.ObjectID) ([]models.MillPayment, error) {
	return s.store.ListMillPayments(ctx, millID)
}

// ListFarmerPayouts returns farmer payouts, newest first.
func (s *Service) ListFarmerPayouts(ctx context.Context, farmerID *primitive.ObjectID) ([]models.FarmerPayout, error) {
	return s.store.ListFarmerPayouts(ctx, farmerID)
}

// ListAdvances returns advances, newest first.
func (s *Service) ListAdvances(ctx context.Context, farmerID *primitive.ObjectID) ([]models.Advance, error) {
	return s.store.ListAdvances(ctx, farmerID)
}

// pendingMillLoads returns the mill's active loads that still owe money,
// oldest first so allocation is FIFO.
func (s *Service) pendingMillLoads(ctx context.Context, millID primitive.ObjectID) ([]models.Load, error) {
	var pending []models.Load
	for _, status := range []models.PaymentStatus{models.PaymentPending, models.PaymentPartial} {
		batch, err := s.store.ListLoads(ctx, mongodb.LoadFilter{
			MillID:            &millID,
			MillPaymentStatus: status,
		})
		if err != nil {
			return nil, fmt.Errorf("list pending loads: %w", err)
		}
		pending = append(pending, batch...)
	}

	// Two status queries can interleave; restore date order.
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Date.Before(pending[j].Date)
	})
	return pending, nil
}
