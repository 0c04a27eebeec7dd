package models

import "time"

// SettingsID is the fixed key of the singleton settings document.
const SettingsID = 1

// Settings holds the organization-wide rates and rounding rules every
// settlement computation reads. Loads store the figures computed against the
// settings in force at save time; a later settings change never rewrites them.
type Settings struct {
	ID                      int              `bson:"_id" json:"id"`
	OrganizationName        string           `bson:"organization_name" json:"organization_name"`
	BagWeightKg             float64          `bson:"bag_weight_kg" json:"bag_weight_kg"`
	Case1DeductPerBagKg     float64          `bson:"case1_deduct_per_bag_kg" json:"case1_deduct_per_bag_kg"`
	Case2DeductPerTonKg     float64          `bson:"case2_deduct_per_ton_kg" json:"case2_deduct_per_ton_kg"`
	CommissionPerBag        float64          `bson:"commission_per_bag" json:"commission_per_bag"`
	CompanionPerBag         float64          `bson:"companion_per_bag" json:"companion_per_bag"`
	CreditCutPercent        float64          `bson:"credit_cut_percent" json:"credit_cut_percent"`
	CreditCutDays           int              `bson:"credit_cut_days" json:"credit_cut_days"`
	DefaultCommissionPolicy CommissionPolicy `bson:"default_commission_policy" json:"default_commission_policy"`
	DefaultSplitPercent     float64          `bson:"default_split_percent" json:"default_split_percent"`
	PayoutRounding          int              `bson:"payout_rounding" json:"payout_rounding"`
	UpdatedAt               time.Time        `bson:"updated_at" json:"updated_at"`
}

// DefaultSettings returns the first-run configuration.
func DefaultSettings() Settings {
	return Settings{
		ID:                      SettingsID,
		OrganizationName:        "Rice Trade Organization",
		BagWeightKg:             75,
		Case1DeductPerBagKg:     2,
		Case2DeductPerTonKg:     5,
		CommissionPerBag:        10,
		CompanionPerBag:         2,
		CreditCutPercent:        1,
		CreditCutDays:           7,
		DefaultCommissionPolicy: PolicyFarmer,
		DefaultSplitPercent:     50,
		PayoutRounding:          1,
	}
}
