package engine

import "github.com/ricetradesolutions/riceledger/internal/domain/models"

// defaultPayers is the business rule for who bears each expense line when the
// form leaves the payer blank. Centralized here rather than in the callers:
// routing is settlement logic, not presentation.
var defaultPayers = map[models.ExpenseKind]models.Payer{
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

// DefaultPayer returns the party that bears the given expense line when no
// payer is supplied.
func DefaultPayer(kind models.ExpenseKind) models.Payer {
	return defaultPayers[kind]
}

// resolvePayer falls back to the line's default for blank or unrecognized
// tags so no expense is ever silently dropped. The other line is always
// company-borne.
func resolvePayer(kind models.ExpenseKind, tagged models.Payer) models.Payer {
	if kind == models.ExpenseOther {
		return models.PayerCompany
	}
	switch tagged {
	case models.PayerFarmer, models.PayerMill, models.PayerCompany:
		return tagged
	default:
		return defaultPayers[kind]
	}
}

// resolveExpenses turns the raw expense input into the closed, ordered list of
// settled lines. companionDefault is the derived amount used when the
// companion line was left unset.
func resolveExpenses(in models.ExpenseInput, companionDefault float64) []models.ExpenseItem {
	companion := companionDefault
	if in.Companion != nil {
		companion = *in.Companion
	}

	return []models.ExpenseItem{
		{Kind: models.ExpenseLabour, Amount: in.Labour, Payer: resolvePayer(models.ExpenseLabour, in.LabourPayer)},
		{Kind: models.ExpenseCompanion, Amount: companion, Payer: resolvePayer(models.ExpenseCompanion, in.CompanionPayer)},
		{Kind: models.ExpenseWeightFee, Amount: in.WeightFee, Payer: resolvePayer(models.ExpenseWeightFee, in.WeightFeePayer)},
		{Kind: models.ExpenseVehicleRent, Amount: in.VehicleRent, Payer: resolvePayer(models.ExpenseVehicleRent, in.VehicleRentPayer)},
		{Kind: models.ExpenseFreightAdvance, Amount: in.FreightAdvance, Payer: resolvePayer(models.ExpenseFreightAdvance, in.FreightAdvancePayer)},
		{Kind: models.ExpenseGumasthaRusul, Amount: in.GumasthaRusul, Payer: resolvePayer(models.ExpenseGumasthaRusul, in.GumasthaRusulPayer)},
		{Kind: models.ExpenseCashDriver, Amount: in.CashDriver, Payer: resolvePayer(models.ExpenseCashDriver, in.CashDriverPayer)},
		{Kind: models.ExpenseHamali, Amount: in.Hamali, Payer: resolvePayer(models.ExpenseHamali, in.HamaliPayer)},
		{Kind: models.ExpenseOther, Amount: in.Other, Payer: models.PayerCompany},
	}
}
