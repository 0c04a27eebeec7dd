package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
)

func testSettings() models.Settings {
	return models.Settings{
		ID:                      models.SettingsID,
		BagWeightKg:             75,
		Case1DeductPerBagKg:     2,
		Case2DeductPerTonKg:     5,
		CommissionPerBag:        10,
		CompanionPerBag:         2,
		CreditCutPercent:        1,
		CreditCutDays:           7,
		DefaultCommissionPolicy: models.PolicyFarmer,
		DefaultSplitPercent:     50,
		PayoutRounding:          1,
	}
}

func baseInput() LoadInput {
	return LoadInput{
		Date:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Case:           models.CaseFarmerLoading,
		GrossKg:        9000,
		DeclaredBags:   120,
		BuyRatePerBag:  2100,
		SellRatePerBag: 2200,
		Policy:         models.PolicyFarmer,
	}
}

func TestComputeSettlementFarmerLoading(t *testing.T) {
	in := baseInput()
	in.Expenses = models.ExpenseInput{
		Labour:      1800,
		WeightFee:   200,
		VehicleRent: 3000,
		LabourPayer: models.PayerMill, WeightFeePayer: models.PayerMill, VehicleRentPayer: models.PayerMill,
	}

	st, err := ComputeSettlement(testSettings(), in)
	if err != nil {
		t.Fatalf("ComputeSettlement: %v", err)
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"deduction_kg", st.DeductionKg, 240},
		{"net_kg", st.NetKg, 8760},
		{"net_bags", float64(st.NetBags), 117},
		{"commission_bags", float64(st.CommissionBags), 117},
		{"commission_amount", st.CommissionAmount, 1170},
		{"farmer_commission_share", st.FarmerCommissionShare, 1170},
		{"mill_commission_share", st.MillCommissionShare, 0},
		{"farmer_expenses_total", st.FarmerExpensesTotal, 234},
		{"mill_expenses_total", st.MillExpensesTotal, 5000},
		{"company_expenses_total", st.CompanyExpensesTotal, 0},
		{"farmer_gross_amount", st.FarmerGrossAmount, 245700},
		{"farmer_payable", st.FarmerPayable, 244296},
		{"farmer_payable_rounded", st.FarmerPayableRounded, 244296},
		{"mill_gross_amount", st.MillGrossAmount, 257400},
		{"mill_receivable", st.MillReceivable, 252400},
		{"mill_receivable_rounded", st.MillReceivableRounded, 252400},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	// Companion was unset so it defaults to commissionBags * companionPerBag
	// and stays on the farmer.
	companion, ok := st.Item(models.ExpenseCompanion)
	if !ok {
		t.Fatal("companion line missing from breakdown")
	}
	if companion.Amount != 234 || companion.Payer != models.PayerFarmer {
		t.Errorf("companion line = %+v, want amount 234 payer FARMER", companion)
	}
}

func TestComputeSettlementDirectDeliverySplit(t *testing.T) {
	in := baseInput()
	in.Case = models.CaseDirectDelivery
	in.GrossKg = 10000
	in.DeclaredBags = 130
	in.Policy = models.PolicySplit
	in.SplitPercent = 60
	zero := 0.0
	in.Expenses.Companion = &zero

	st, err := ComputeSettlement(testSettings(), in)
	if err != nil {
		t.Fatalf("ComputeSettlement: %v", err)
	}

	if st.DeductionKg != 50 {
		t.Errorf("deduction_kg = %v, want 50", st.DeductionKg)
	}
	if st.NetKg != 9950 {
		t.Errorf("net_kg = %v, want 9950", st.NetKg)
	}
	if st.NetBags != 133 {
		t.Errorf("net_bags = %d, want 133", st.NetBags)
	}
	if st.CommissionAmount != 1330 {
		t.Errorf("commission_amount = %v, want 1330", st.CommissionAmount)
	}
	if st.FarmerCommissionShare != 798 {
		t.Errorf("farmer_commission_share = %v, want 798", st.FarmerCommissionShare)
	}
	if st.MillCommissionShare != 532 {
		t.Errorf("mill_commission_share = %v, want 532", st.MillCommissionShare)
	}
}

func TestCommissionSplitExactness(t *testing.T) {
	// The mill takes the remainder of the rounded farmer share, so the two
	// shares must sum to the commission for every percent.
	s := testSettings()
	for pct := 0; pct <= 100; pct++ {
		in := baseInput()
		in.Policy = models.PolicySplit
		in.SplitPercent = float64(pct)

		st, err := ComputeSettlement(s, in)
		if err != nil {
			t.Fatalf("pct %d: %v", pct, err)
		}
		if st.FarmerCommissionShare+st.MillCommissionShare != st.CommissionAmount {
			t.Errorf("pct %d: shares %v + %v != commission %v",
				pct, st.FarmerCommissionShare, st.MillCommissionShare, st.CommissionAmount)
		}
	}
}

func TestNetWeightFloor(t *testing.T) {
	s := testSettings()
	s.Case1DeductPerBagKg = 100 // deduction 12000 kg exceeds gross

	in := baseInput()
	st, err := ComputeSettlement(s, in)
	if err != nil {
		t.Fatalf("ComputeSettlement: %v", err)
	}
	if st.NetKg != 0 {
		t.Errorf("net_kg = %v, want 0", st.NetKg)
	}
	if st.NetBags != 0 {
		t.Errorf("net_bags = %d, want 0", st.NetBags)
	}
}

func TestPolicyNoneZeroShares(t *testing.T) {
	in := baseInput()
	in.Policy = models.PolicyNone

	st, err := ComputeSettlement(testSettings(), in)
	if err != nil {
		t.Fatalf("ComputeSettlement: %v", err)
	}
	if st.FarmerCommissionShare != 0 || st.MillCommissionShare != 0 {
		t.Errorf("shares = %v/%v, want 0/0", st.FarmerCommissionShare, st.MillCommissionShare)
	}
	if st.CommissionAmount == 0 {
		t.Error("commission amount should still be computed under NONE")
	}
}

func TestPayoutRoundingIdempotent(t *testing.T) {
	for _, unit := range []int{1, 10, 100} {
		s := testSettings()
		s.PayoutRounding = unit

		st, err := ComputeSettlement(s, baseInput())
		if err != nil {
			t.Fatalf("unit %d: %v", unit, err)
		}

		again := roundToUnit(st.FarmerPayableRounded, float64(unit))
		if again != st.FarmerPayableRounded {
			t.Errorf("unit %d: re-rounding %v gave %v", unit, st.FarmerPayableRounded, again)
		}
	}
}

func TestUseDeclaredForCommission(t *testing.T) {
	in := baseInput()
	in.UseDeclaredForCommission = true

	st, err := ComputeSettlement(testSettings(), in)
	if err != nil {
		t.Fatalf("ComputeSettlement: %v", err)
	}
	if st.CommissionBags != 120 {
		t.Errorf("commission_bags = %d, want declared 120", st.CommissionBags)
	}
	if st.NetBags != 117 {
		t.Errorf("net_bags = %d, want 117", st.NetBags)
	}
	if st.CommissionAmount != 1200 {
		t.Errorf("commission_amount = %v, want 1200", st.CommissionAmount)
	}
}

func TestUnknownPayerFallsBackToDefault(t *testing.T) {
	in := baseInput()
	in.Expenses = models.ExpenseInput{
		Labour:      500,
		LabourPayer: "DRIVER", // not a valid payer
	}

	st, err := ComputeSettlement(testSettings(), in)
	if err != nil {
		t.Fatalf("ComputeSettlement: %v", err)
	}
	labour, _ := st.Item(models.ExpenseLabour)
	if labour.Payer != models.PayerMill {
		t.Errorf("labour payer = %s, want default MILL", labour.Payer)
	}
	if st.MillExpensesTotal < 500 {
		t.Errorf("labour not routed: mill expenses %v", st.MillExpensesTotal)
	}
}

func TestOtherAlwaysCompany(t *testing.T) {
	in := baseInput()
	in.Expenses.Other = 750

	st, err := ComputeSettlement(testSettings(), in)
	if err != nil {
		t.Fatalf("ComputeSettlement: %v", err)
	}
	if st.CompanyExpensesTotal != 750 {
		t.Errorf("company expenses = %v, want 750", st.CompanyExpensesTotal)
	}
}

func TestValidateLoadInputRejections(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(*LoadInput)
		field  string
	}{
		{"zero gross", func(in *LoadInput) { in.GrossKg = 0 }, "gross_kg"},
		{"negative gross", func(in *LoadInput) { in.GrossKg = -10 }, "gross_kg"},
		{"tare at gross", func(in *LoadInput) { in.TareKg = in.GrossKg }, "tare_kg"},
		{"tare above gross", func(in *LoadInput) { in.TareKg = in.GrossKg + 1 }, "tare_kg"},
		{"zero bags", func(in *LoadInput) { in.DeclaredBags = 0 }, "declared_bags"},
		{"zero buy rate", func(in *LoadInput) { in.BuyRatePerBag = 0 }, "buy_rate_per_bag"},
		{"zero sell rate", func(in *LoadInput) { in.SellRatePerBag = 0 }, "sell_rate_per_bag"},
		{"bad case", func(in *LoadInput) { in.Case = "CASE9" }, "case"},
		{"bad policy", func(in *LoadInput) { in.Policy = "VEHICLE" }, "commission_policy"},
		{"split above 100", func(in *LoadInput) { in.Policy = models.PolicySplit; in.SplitPercent = 101 }, "split_percent"},
		{"future date", func(in *LoadInput) { in.Date = now.AddDate(0, 0, 1) }, "date"},
		{"missing date", func(in *LoadInput) { in.Date = time.Time{} }, "date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput()
			tc.mutate(&in)

			err := ValidateLoadInput(in, now)
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			found := false
			for _, f := range valErr.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %s in %v", tc.field, valErr.Fields)
			}
		})
	}
}

func TestValidateSettingsRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.Settings)
		field  string
	}{
		{"zero bag weight", func(s *models.Settings) { s.BagWeightKg = 0 }, "bag_weight_kg"},
		{"negative bag weight", func(s *models.Settings) { s.BagWeightKg = -75 }, "bag_weight_kg"},
		{"zero rounding", func(s *models.Settings) { s.PayoutRounding = 0 }, "payout_rounding"},
		{"odd rounding unit", func(s *models.Settings) { s.PayoutRounding = 5 }, "payout_rounding"},
		{"split above 100", func(s *models.Settings) { s.DefaultSplitPercent = 150 }, "default_split_percent"},
		{"negative credit days", func(s *models.Settings) { s.CreditCutDays = -1 }, "credit_cut_days"},
		{"credit percent above 100", func(s *models.Settings) { s.CreditCutPercent = 101 }, "credit_cut_percent"},
		{"bad policy", func(s *models.Settings) { s.DefaultCommissionPolicy = "BOTH" }, "default_commission_policy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := testSettings()
			tc.mutate(&s)

			err := ValidateSettings(s)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("want ConfigurationError, got %v", err)
			}
			found := false
			for _, f := range cfgErr.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %s in %v", tc.field, cfgErr.Fields)
			}
		})
	}

	if err := ValidateSettings(testSettings()); err != nil {
		t.Errorf("valid settings rejected: %v", err)
	}
}

func TestComputeSettlementRejectsBadSettings(t *testing.T) {
	s := testSettings()
	s.BagWeightKg = 0

	_, err := ComputeSettlement(s, baseInput())
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("want ConfigurationError, got %v", err)
	}
}

func TestDefaultPayerTable(t *testing.T) {
	want := map[models.ExpenseKind]models.Payer{
		models.ExpenseLabour:         models.PayerMill,
		models.ExpenseCompanion:      models.PayerFarmer,
		models.ExpenseWeightFee:      models.PayerMill,
		models.ExpenseVehicleRent:    models.PayerMill,
		models.ExpenseFreightAdvance: models.PayerMill,
		models.ExpenseGumasthaRusul:  models.PayerFarmer,
		models.ExpenseCashDriver:     models.PayerFarmer,
		models.ExpenseHamali:         models.PayerFarmer,
		models.ExpenseOther:          models.PayerCompany,
	}
	for kind, payer := range want {
		if got := DefaultPayer(kind); got != payer {
			t.Errorf("DefaultPayer(%s) = %s, want %s", kind, got, payer)
		}
	}
}
