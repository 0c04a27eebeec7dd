package engine

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
)

func settledLoad(t *testing.T) models.Load {
	t.Helper()

	in := baseInput()
	in.Expenses = models.ExpenseInput{
		Labour:      1800,
		WeightFee:   200,
		VehicleRent: 3000,
		Other:       500,
		LabourPayer: models.PayerMill, WeightFeePayer: models.PayerMill, VehicleRentPayer: models.PayerMill,
	}
	st, err := ComputeSettlement(testSettings(), in)
	if err != nil {
		t.Fatalf("ComputeSettlement: %v", err)
	}

	return models.Load{
		Date:           in.Date,
		Case:           in.Case,
		GrossKg:        in.GrossKg,
		DeclaredBags:   in.DeclaredBags,
		BuyRatePerBag:  in.BuyRatePerBag,
		SellRatePerBag: in.SellRatePerBag,
		Expenses:       in.Expenses,
		Settlement:     st,
	}
}

func TestInvoiceBreakdownTotals(t *testing.T) {
	load := settledLoad(t)
	inv := InvoiceBreakdown(load)

	if inv.BaseAmount != load.Settlement.MillGrossAmount {
		t.Errorf("base = %v, want mill gross %v", inv.BaseAmount, load.Settlement.MillGrossAmount)
	}
	// Brokerage 1170 + vehicle rent 3000 ride on top.
	if inv.TotalAdd != 4170 {
		t.Errorf("total_add = %v, want 4170", inv.TotalAdd)
	}
	// Labour 1800 + companion 234 + weight fee 200 + other 500 come off.
	if inv.TotalLess != 2734 {
		t.Errorf("total_less = %v, want 2734", inv.TotalLess)
	}
	if inv.AmountAfterAdd != inv.BaseAmount+inv.TotalAdd {
		t.Errorf("amount_after_add = %v, want %v", inv.AmountAfterAdd, inv.BaseAmount+inv.TotalAdd)
	}
	if inv.FinalAmount != inv.AmountAfterAdd-inv.TotalLess {
		t.Errorf("final = %v, want %v", inv.FinalAmount, inv.AmountAfterAdd-inv.TotalLess)
	}

	var addSum, lessSum float64
	for _, item := range inv.AddItems {
		addSum += item.Amount
	}
	for _, item := range inv.LessItems {
		lessSum += item.Amount
	}
	if addSum != inv.TotalAdd || lessSum != inv.TotalLess {
		t.Errorf("item sums %v/%v disagree with totals %v/%v", addSum, lessSum, inv.TotalAdd, inv.TotalLess)
	}
}

func TestInvoiceBreakdownOmitsZeroLines(t *testing.T) {
	in := baseInput()
	zero := 0.0
	in.Expenses.Companion = &zero
	st, err := ComputeSettlement(testSettings(), in)
	if err != nil {
		t.Fatalf("ComputeSettlement: %v", err)
	}

	inv := InvoiceBreakdown(models.Load{Settlement: st})
	for _, item := range inv.LessItems {
		if item.Amount == 0 {
			t.Errorf("zero line %q rendered", item.Label)
		}
	}
}

func TestCalculateProfit(t *testing.T) {
	load := settledLoad(t)
	load.CreditCutAmount = 2443

	p := CalculateProfit(load)

	wantMargin := float64(100 * 117) // (2200-2100) * 117 bags
	if p.RateMargin != wantMargin {
		t.Errorf("rate_margin = %v, want %v", p.RateMargin, wantMargin)
	}
	if p.CommissionIncome != 1170 {
		t.Errorf("commission_income = %v, want 1170", p.CommissionIncome)
	}
	if p.CreditCutIncome != 2443 {
		t.Errorf("credit_cut_income = %v, want 2443", p.CreditCutIncome)
	}
	if p.TotalIncome != wantMargin+1170+2443 {
		t.Errorf("total_income = %v", p.TotalIncome)
	}
	if p.TotalExpenses != 500 {
		t.Errorf("total_expenses = %v, want company-borne 500", p.TotalExpenses)
	}
	if p.NetProfit != p.TotalIncome-p.TotalExpenses {
		t.Errorf("net_profit = %v", p.NetProfit)
	}
}

func TestGenerateLoadNumber(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	pattern := regexp.MustCompile(`^ORG-20250103-\d{3}$`)

	for i := 0; i < 50; i++ {
		n := GenerateLoadNumber(time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC), rnd)
		if !pattern.MatchString(n) {
			t.Fatalf("load number %q does not match ORG-YYYYMMDD-NNN", n)
		}
	}
}
