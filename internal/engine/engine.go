package engine

import (
	"math"
	"time"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
)

// LoadInput is the raw, uncomputed side of a load: measurements, rates and
// commission terms as entered on the form.
type LoadInput struct {
	Date                     time.Time               `json:"date"`
	Case                     models.IntakeCase       `json:"case"`
	GrossKg                  float64                 `json:"gross_kg"`
	TareKg                   float64                 `json:"tare_kg"`
	DeclaredBags             int                     `json:"declared_bags"`
	BuyRatePerBag            float64                 `json:"buy_rate_per_bag"`
	SellRatePerBag           float64                 `json:"sell_rate_per_bag"`
	Policy                   models.CommissionPolicy `json:"commission_policy"`
	SplitPercent             float64                 `json:"split_percent"`
	UseDeclaredForCommission bool                    `json:"use_declared_for_commission"`
	Expenses                 models.ExpenseInput     `json:"expenses"`
}

// ValidateSettings checks the administrator-controlled rates. A failure here
// must block the settings save, never surface during a load computation.
func ValidateSettings(s models.Settings) error {
	cfgErr := &ConfigurationError{}

	if s.BagWeightKg <= 0 {
		cfgErr.add("bag_weight_kg", "must be greater than 0")
	}
	if s.Case1DeductPerBagKg < 0 {
		cfgErr.add("case1_deduct_per_bag_kg", "must not be negative")
	}
	if s.Case2DeductPerTonKg < 0 {
		cfgErr.add("case2_deduct_per_ton_kg", "must not be negative")
	}
	if s.CommissionPerBag < 0 {
		cfgErr.add("commission_per_bag", "must not be negative")
	}
	if s.CompanionPerBag < 0 {
		cfgErr.add("companion_per_bag", "must not be negative")
	}
	if s.CreditCutPercent < 0 || s.CreditCutPercent > 100 {
		cfgErr.add("credit_cut_percent", "must be between 0 and 100")
	}
	if s.CreditCutDays < 0 {
		cfgErr.add("credit_cut_days", "must not be negative")
	}
	switch s.DefaultCommissionPolicy {
	case models.PolicyFarmer, models.PolicyMill, models.PolicySplit, models.PolicyNone:
	default:
		cfgErr.add("default_commission_policy", "must be FARMER, MILL, SPLIT or NONE")
	}
	if s.DefaultSplitPercent < 0 || s.DefaultSplitPercent > 100 {
		cfgErr.add("default_split_percent", "must be between 0 and 100")
	}
	switch s.PayoutRounding {
	case 1, 10, 100:
	default:
		cfgErr.add("payout_rounding", "must be 1, 10 or 100")
	}

	if len(cfgErr.Fields) > 0 {
		return cfgErr
	}
	return nil
}

// ValidateLoadInput checks the engine's preconditions. now bounds the load
// date; pass the wall clock. ComputeSettlement runs the same checks minus the
// date bound, which needs a clock and so stays out of the pure path.
func ValidateLoadInput(in LoadInput, now time.Time) error {
	err := validateLoadCore(in)

	var valErr *ValidationError
	if err != nil {
		valErr = err.(*ValidationError)
	} else {
		valErr = &ValidationError{}
	}

	if !in.Date.IsZero() && startOfDay(in.Date).After(startOfDay(now)) {
		valErr.add("date", "cannot be in the future")
	}

	if len(valErr.Fields) > 0 {
		return valErr
	}
	return nil
}

func validateLoadCore(in LoadInput) error {
	valErr := &ValidationError{}

	switch in.Case {
	case models.CaseFarmerLoading, models.CaseDirectDelivery:
	default:
		valErr.add("case", "must be CASE1 or CASE2")
	}
	if in.Date.IsZero() {
		valErr.add("date", "is required")
	}
	if in.GrossKg <= 0 {
		valErr.add("gross_kg", "must be greater than 0")
	}
	if in.TareKg < 0 {
		valErr.add("tare_kg", "must not be negative")
	}
	if in.GrossKg > 0 && in.TareKg >= in.GrossKg {
		valErr.add("tare_kg", "must be less than gross weight")
	}
	if in.DeclaredBags <= 0 {
		valErr.add("declared_bags", "must be greater than 0")
	}
	if in.BuyRatePerBag <= 0 {
		valErr.add("buy_rate_per_bag", "must be greater than 0")
	}
	if in.SellRatePerBag <= 0 {
		valErr.add("sell_rate_per_bag", "must be greater than 0")
	}
	switch in.Policy {
	case models.PolicyFarmer, models.PolicyMill, models.PolicyNone:
	case models.PolicySplit:
		if in.SplitPercent < 0 || in.SplitPercent > 100 {
			valErr.add("split_percent", "must be between 0 and 100")
		}
	default:
		valErr.add("commission_policy", "must be FARMER, MILL, SPLIT or NONE")
	}

	if len(valErr.Fields) > 0 {
		return valErr
	}
	return nil
}

// ComputeSettlement turns a load's raw fields into the full settlement
// snapshot. It validates its inputs; on error no partial result is returned.
//
// Rounding happens in exactly three places: net bags (half-up to a whole
// bag), the farmer's commission share under SPLIT (half-up to a rupee, with
// the mill taking the exact remainder so the two shares always sum to the
// commission), and the final payable/receivable figures (to the configured
// payout unit). Intermediate sums are never rounded.
func ComputeSettlement(s models.Settings, in LoadInput) (models.Settlement, error) {
	if err := ValidateSettings(s); err != nil {
		return models.Settlement{}, err
	}
	if err := validateLoadCore(in); err != nil {
		return models.Settlement{}, err
	}

	// Step 1: deduction and net weight. CASE1 load loss scales with handling
	// count, CASE2 with transported mass.
	var deductionKg float64
	if in.Case == models.CaseFarmerLoading {
		deductionKg = float64(in.DeclaredBags) * s.Case1DeductPerBagKg
	} else {
		deductionKg = in.GrossKg * (s.Case2DeductPerTonKg / 1000)
	}

	netKg := math.Max(0, in.GrossKg-in.TareKg-deductionKg)
	netBags := int(math.Round(netKg / s.BagWeightKg))

	// Step 2: commission.
	commissionBags := netBags
	if in.UseDeclaredForCommission {
		commissionBags = in.DeclaredBags
	}
	commissionAmount := float64(commissionBags) * s.CommissionPerBag

	var farmerShare, millShare float64
	switch in.Policy {
	case models.PolicyFarmer:
		farmerShare = commissionAmount
	case models.PolicyMill:
		millShare = commissionAmount
	case models.PolicySplit:
		farmerShare = math.Round(commissionAmount * in.SplitPercent / 100)
		// Remainder, not a second rounding: keeps the shares summing to the
		// commission exactly for every percent.
		millShare = commissionAmount - farmerShare
	case models.PolicyNone:
	}

	// Step 3: expense allocation.
	items := resolveExpenses(in.Expenses, float64(commissionBags)*s.CompanionPerBag)

	var farmerExpenses, millExpenses, companyExpenses float64
	for _, item := range items {
		switch item.Payer {
		case models.PayerFarmer:
			farmerExpenses += item.Amount
		case models.PayerMill:
			millExpenses += item.Amount
		case models.PayerCompany:
			companyExpenses += item.Amount
		}
	}

	// Step 4: settlement figures.
	farmerGross := float64(netBags) * in.BuyRatePerBag
	farmerDeductions := farmerShare + farmerExpenses
	farmerPayable := farmerGross - farmerDeductions

	millGross := float64(netBags) * in.SellRatePerBag
	millDeductions := millShare + millExpenses
	millReceivable := millGross - millDeductions

	unit := float64(s.PayoutRounding)

	return models.Settlement{
		DeductionKg:           roundTo2(deductionKg),
		NetKg:                 roundTo2(netKg),
		NetBags:               netBags,
		CommissionBags:        commissionBags,
		CommissionAmount:      commissionAmount,
		FarmerCommissionShare: farmerShare,
		MillCommissionShare:   millShare,
		Items:                 items,
		FarmerExpensesTotal:   farmerExpenses,
		MillExpensesTotal:     millExpenses,
		CompanyExpensesTotal:  companyExpenses,
		FarmerGrossAmount:     farmerGross,
		FarmerTotalDeductions: farmerDeductions,
		FarmerPayable:         farmerPayable,
		FarmerPayableRounded:  roundToUnit(farmerPayable, unit),
		MillGrossAmount:       millGross,
		MillTotalDeductions:   millDeductions,
		MillReceivable:        millReceivable,
		MillReceivableRounded: roundToUnit(millReceivable, unit),
	}, nil
}

func roundToUnit(amount, unit float64) float64 {
	return math.Round(amount/unit) * unit
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
