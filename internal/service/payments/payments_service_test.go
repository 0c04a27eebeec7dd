package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
)

type fakeStore struct {
	settings models.Settings
	loads    map[primitive.ObjectID]models.Load
	payments []models.MillPayment
	payouts  []models.FarmerPayout
	advances []models.Advance
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings: models.DefaultSettings(),
		loads:    map[primitive.ObjectID]models.Load{},
	}
}

func (f *fakeStore) GetSettings(context.Context) (models.Settings, error) { return f.settings, nil }

func (f *fakeStore) SaveSettings(_ context.Context, s models.Settings, _ string) error {
	f.settings = s
	return nil
}

func (f *fakeStore) SeedSettings(context.Context) (models.Settings, error) { return f.settings, nil }

func (f *fakeStore) AddLoad(_ context.Context, load models.Load, _ string) (models.Load, error) {
	load.ID = primitive.NewObjectID()
	f.loads[load.ID] = load
	return load, nil
}

func (f *fakeStore) GetLoad(_ context.Context, id primitive.ObjectID) (models.Load, error) {
	load, ok := f.loads[id]
	if !ok {
		return models.Load{}, mongodb.ErrNotFound
	}
	return load, nil
}

func (f *fakeStore) GetLoadByNumber(_ context.Context, number string) (models.Load, error) {
	for _, load := range f.loads {
		if load.LoadNumber == number {
			return load, nil
		}
	}
	return models.Load{}, mongodb.ErrNotFound
}

func (f *fakeStore) ListLoads(_ context.Context, filter mongodb.LoadFilter) ([]models.Load, error) {
	var out []models.Load
	for _, load := range f.loads {
		if filter.MillID != nil && load.MillID != *filter.MillID {
			continue
		}
		if filter.MillPaymentStatus != "" && load.MillPaymentStatus != filter.MillPaymentStatus {
			continue
		}
		out = append(out, load)
	}
	// Date ascending, as the real store returns them.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Date.Before(out[j-1].Date); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateLoad(_ context.Context, load models.Load, _ string) (models.Load, error) {
	if _, ok := f.loads[load.ID]; !ok {
		return models.Load{}, mongodb.ErrNotFound
	}
	load.Version++
	f.loads[load.ID] = load
	return load, nil
}

func (f *fakeStore) SoftDeleteLoad(_ context.Context, id primitive.ObjectID, _ string) error {
	load, ok := f.loads[id]
	if !ok {
		return mongodb.ErrNotFound
	}
	load.Active = false
	f.loads[id] = load
	return nil
}

func (f *fakeStore) AddMillPayment(_ context.Context, p models.MillPayment, _ string) (models.MillPayment, error) {
	p.ID = primitive.NewObjectID()
	f.payments = append(f.payments, p)
	return p, nil
}

func (f *fakeStore) ListMillPayments(context.Context, *primitive.ObjectID) ([]models.MillPayment, error) {
	return f.payments, nil
}

func (f *fakeStore) AddFarmerPayout(_ context.Context, p models.FarmerPayout, _ string) (models.FarmerPayout, error) {
	p.ID = primitive.NewObjectID()
	f.payouts = append(f.payouts, p)
	return p, nil
}

func (f *fakeStore) ListFarmerPayouts(context.Context, *primitive.ObjectID) ([]models.FarmerPayout, error) {
	return f.payouts, nil
}

func (f *fakeStore) AddAdvance(_ context.Context, a models.Advance, _ string) (models.Advance, error) {
	a.ID = primitive.NewObjectID()
	f.advances = append(f.advances, a)
	return a, nil
}

func (f *fakeStore) ListAdvances(context.Context, *primitive.ObjectID) ([]models.Advance, error) {
	return f.advances, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var loadSeq = 100

func seedLoad(store *fakeStore, millID primitive.ObjectID, date time.Time, receivable, farmerPayable float64) models.Load {
	loadSeq++
	load := models.Load{
		LoadNumber: fmt.Sprintf("ORG-%s-%d", date.Format("20060102"), loadSeq),
		Date:       date,
		FarmerID:   primitive.NewObjectID(),
		MillID:     millID,
		Settlement: models.Settlement{
			MillReceivableRounded: receivable,
			FarmerPayableRounded:  farmerPayable,
		},
		MillPaymentStatus:   models.PaymentPending,
		FarmerPaymentStatus: models.PaymentPending,
		Active:              true,
	}
	created, _ := store.AddLoad(context.Background(), load, "test")
	return created
}

func TestRecordMillPaymentAllocatesOldestFirst(t *testing.T) {
	store := newFakeStore()
	millID := primitive.NewObjectID()
	first := seedLoad(store, millID, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), 100000, 95000)
	second := seedLoad(store, millID, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), 50000, 47000)

	svc := NewService(store, nil, fixedClock(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))

	payment, err := svc.RecordMillPayment(context.Background(), MillPaymentRequest{
		MillID: millID,
		Amount: 120000,
	}, "test")
	if err != nil {
		t.Fatalf("RecordMillPayment: %v", err)
	}

	if len(payment.Allocations) != 2 {
		t.Fatalf("allocations = %d, want 2", len(payment.Allocations))
	}
	if payment.Allocations[0].LoadID != first.ID || payment.Allocations[0].Amount != 100000 {
		t.Errorf("first allocation = %+v, want full 100000 on oldest load", payment.Allocations[0])
	}
	if payment.Allocations[1].LoadID != second.ID || payment.Allocations[1].Amount != 20000 {
		t.Errorf("second allocation = %+v, want 20000 on next load", payment.Allocations[1])
	}
	if payment.Unallocated != 0 {
		t.Errorf("unallocated = %v, want 0", payment.Unallocated)
	}

	gotFirst, _ := store.GetLoad(context.Background(), first.ID)
	if gotFirst.MillPaymentStatus != models.PaymentFull {
		t.Errorf("oldest load status = %s, want FULL", gotFirst.MillPaymentStatus)
	}
	if gotFirst.MillPaidDate == nil {
		t.Error("oldest load missing paid date")
	}

	gotSecond, _ := store.GetLoad(context.Background(), second.ID)
	if gotSecond.MillPaymentStatus != models.PaymentPartial {
		t.Errorf("second load status = %s, want PARTIAL", gotSecond.MillPaymentStatus)
	}
	if gotSecond.MillPaidAmount != 20000 {
		t.Errorf("second load paid = %v, want 20000", gotSecond.MillPaidAmount)
	}
}

func TestRecordMillPaymentTracksUnallocatedRemainder(t *testing.T) {
	store := newFakeStore()
	millID := primitive.NewObjectID()
	seedLoad(store, millID, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), 80000, 76000)

	svc := NewService(store, nil, fixedClock(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))

	payment, err := svc.RecordMillPayment(context.Background(), MillPaymentRequest{
		MillID: millID,
		Amount: 100000,
	}, "test")
	if err != nil {
		t.Fatalf("RecordMillPayment: %v", err)
	}

	if payment.Unallocated != 20000 {
		t.Errorf("unallocated = %v, want 20000", payment.Unallocated)
	}
}

func TestRecordMillPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)

	if _, err := svc.RecordMillPayment(context.Background(), MillPaymentRequest{
		MillID: primitive.NewObjectID(),
		Amount: 0,
	}, "test"); !errors.Is(err, ErrNonPositiveAmount) {
		t.Fatalf("err = %v, want ErrNonPositiveAmount", err)
	}
}

func TestRecordFarmerPayoutAppliesCreditCutOnce(t *testing.T) {
	store := newFakeStore()
	// 1% cut within 7 days of the load date.
	loadDate := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	load := seedLoad(store, primitive.NewObjectID(), loadDate, 252400, 244300)

	svc := NewService(store, nil, fixedClock(loadDate.AddDate(0, 0, 5)))

	payout, err := svc.RecordFarmerPayout(context.Background(), FarmerPayoutRequest{
		LoadID:      load.ID,
		PaymentDate: loadDate.AddDate(0, 0, 5),
		Amount:      100000,
	}, "test")
	if err != nil {
		t.Fatalf("RecordFarmerPayout: %v", err)
	}

	wantCut := 2443.0 // round(244300 * 1%)
	if payout.CreditCutAmount != wantCut {
		t.Errorf("credit cut = %v, want %v", payout.CreditCutAmount, wantCut)
	}

	got, _ := store.GetLoad(context.Background(), load.ID)
	if got.CreditCutAmount != wantCut {
		t.Errorf("load credit cut = %v, want %v", got.CreditCutAmount, wantCut)
	}
	if got.FarmerPaymentStatus != models.PaymentPartial {
		t.Errorf("status = %s, want PARTIAL", got.FarmerPaymentStatus)
	}

	// Settle the remainder: pending = 244300 - 100000 - 2443.
	second, err := svc.RecordFarmerPayout(context.Background(), FarmerPayoutRequest{
		LoadID:      load.ID,
		PaymentDate: loadDate.AddDate(0, 0, 6),
		Amount:      141857,
	}, "test")
	if err != nil {
		t.Fatalf("second payout: %v", err)
	}
	if second.CreditCutAmount != 0 {
		t.Errorf("second payout cut = %v, want 0 (cut applies once)", second.CreditCutAmount)
	}

	got, _ = store.GetLoad(context.Background(), load.ID)
	if got.FarmerPaymentStatus != models.PaymentFull {
		t.Errorf("status = %s, want FULL", got.FarmerPaymentStatus)
	}
	if got.FarmerPaidDate == nil {
		t.Error("missing farmer paid date")
	}
}

func TestRecordFarmerPayoutIneligibleWindowNoCut(t *testing.T) {
	store := newFakeStore()
	loadDate := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	load := seedLoad(store, primitive.NewObjectID(), loadDate, 252400, 244300)

	svc := NewService(store, nil, nil)

	payout, err := svc.RecordFarmerPayout(context.Background(), FarmerPayoutRequest{
		LoadID:      load.ID,
		PaymentDate: loadDate.AddDate(0, 0, 12),
		Amount:      244300,
	}, "test")
	if err != nil {
		t.Fatalf("RecordFarmerPayout: %v", err)
	}
	if payout.CreditCutAmount != 0 {
		t.Errorf("cut = %v, want 0 outside the window", payout.CreditCutAmount)
	}

	got, _ := store.GetLoad(context.Background(), load.ID)
	if got.FarmerPaymentStatus != models.PaymentFull {
		t.Errorf("status = %s, want FULL", got.FarmerPaymentStatus)
	}
}

func TestRecordFarmerPayoutRejectsOverpayment(t *testing.T) {
	store := newFakeStore()
	loadDate := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	load := seedLoad(store, primitive.NewObjectID(), loadDate, 252400, 244300)

	svc := NewService(store, nil, nil)

	if _, err := svc.RecordFarmerPayout(context.Background(), FarmerPayoutRequest{
		LoadID:      load.ID,
		PaymentDate: loadDate.AddDate(0, 0, 12),
		Amount:      300000,
	}, "test"); !errors.Is(err, ErrPayoutExceedsPending) {
		t.Fatalf("err = %v, want ErrPayoutExceedsPending", err)
	}
}

func TestRecordFarmerPayoutRejectsSettledLoad(t *testing.T) {
	store := newFakeStore()
	loadDate := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	load := seedLoad(store, primitive.NewObjectID(), loadDate, 252400, 244300)

	svc := NewService(store, nil, nil)

	if _, err := svc.RecordFarmerPayout(context.Background(), FarmerPayoutRequest{
		LoadID:      load.ID,
		PaymentDate: loadDate.AddDate(0, 0, 12),
		Amount:      244300,
	}, "test"); err != nil {
		t.Fatalf("first payout: %v", err)
	}

	if _, err := svc.RecordFarmerPayout(context.Background(), FarmerPayoutRequest{
		LoadID: load.ID,
		Amount: 1,
	}, "test"); !errors.Is(err, ErrLoadAlreadySettled) {
		t.Fatalf("err = %v, want ErrLoadAlreadySettled", err)
	}
}

func TestPreviewCreditCutDoesNotTouchLedger(t *testing.T) {
	store := newFakeStore()
	loadDate := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	load := seedLoad(store, primitive.NewObjectID(), loadDate, 252400, 244300)

	svc := NewService(store, nil, nil)

	result, err := svc.PreviewCreditCut(context.Background(), load.ID, loadDate.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("PreviewCreditCut: %v", err)
	}
	if !result.Eligible || result.CreditCut != 2443 {
		t.Errorf("result = %+v, want eligible with cut 2443", result)
	}

	got, _ := store.GetLoad(context.Background(), load.ID)
	if got.CreditCutAmount != 0 || got.FarmerPaidAmount != 0 {
		t.Errorf("preview mutated the load: %+v", got)
	}
}

func TestRecordAdvance(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, fixedClock(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))

	advance, err := svc.RecordAdvance(context.Background(), AdvanceRequest{
		FarmerID: primitive.NewObjectID(),
		Amount:   5000,
	}, "test")
	if err != nil {
		t.Fatalf("RecordAdvance: %v", err)
	}
	if advance.Date.IsZero() {
		t.Error("advance date not defaulted to the clock")
	}
	if len(store.advances) != 1 {
		t.Fatalf("stored advances = %d, want 1", len(store.advances))
	}
}
