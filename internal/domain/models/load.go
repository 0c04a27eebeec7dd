package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IntakeCase distinguishes the two load-intake workflows, which use different
// shrinkage-deduction bases.
type IntakeCase string

const (
	// CaseFarmerLoading means the farmer self-declares bags; shrinkage is
	// deducted per declared bag.
	CaseFarmerLoading IntakeCase = "CASE1"
	// CaseDirectDelivery means the trader weighs at delivery; shrinkage is
	// deducted per ton of gross weight.
	CaseDirectDelivery IntakeCase = "CASE2"
)

// CommissionPolicy names the party that bears the broker's per-bag commission.
type CommissionPolicy string

const (
	PolicyFarmer CommissionPolicy = "FARMER"
	PolicyMill   CommissionPolicy = "MILL"
	PolicySplit  CommissionPolicy = "SPLIT"
	PolicyNone   CommissionPolicy = "NONE"
)

// Payer identifies who bears an expense line.
type Payer string

const (
	PayerFarmer  Payer = "FARMER"
	PayerMill    Payer = "MILL"
	PayerCompany Payer = "COMPANY"
)

// PaymentStatus tracks how much of a side's obligation has been settled.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentFull    PaymentStatus = "FULL"
)

// ExpenseKind enumerates the closed set of expense lines a load may carry.
type ExpenseKind string

const (
	ExpenseLabour         ExpenseKind = "labour"
	ExpenseCompanion      ExpenseKind = "companion"
	ExpenseWeightFee      ExpenseKind = "weight_fee"
	ExpenseVehicleRent    ExpenseKind = "vehicle_rent"
	ExpenseFreightAdvance ExpenseKind = "freight_advance"
	ExpenseGumasthaRusul  ExpenseKind = "gumastha_rusul"
	ExpenseCashDriver     ExpenseKind = "cash_driver"
	ExpenseHamali         ExpenseKind = "hamali"
	ExpenseOther          ExpenseKind = "other"
)

// ExpenseKinds lists every expense line in invoice order.
var ExpenseKinds = []ExpenseKind{
	ExpenseLabour,
	ExpenseCompanion,
	ExpenseWeightFee,
	ExpenseVehicleRent,
	ExpenseFreightAdvance,
	ExpenseGumasthaRusul,
	ExpenseCashDriver,
	ExpenseHamali,
	ExpenseOther,
}

// ExpenseInput carries the raw expense lines of a load as entered. A nil
// Companion amount means "derive from commission bags at the configured
// per-bag rate". An empty payer means "route to the line's default payer".
// The other line is always borne by the company and has no payer field.
type ExpenseInput struct {
	Labour         float64  `bson:"labour" json:"labour"`
	Companion      *float64 `bson:"companion,omitempty" json:"companion,omitempty"`
	WeightFee      float64  `bson:"weight_fee" json:"weight_fee"`
	VehicleRent    float64  `bson:"vehicle_rent" json:"vehicle_rent"`
	FreightAdvance float64  `bson:"freight_advance" json:"freight_advance"`
	GumasthaRusul  float64  `bson:"gumastha_rusul" json:"gumastha_rusul"`
	CashDriver     float64  `bson:"cash_driver" json:"cash_driver"`
	Hamali         float64  `bson:"hamali" json:"hamali"`
	Other          float64  `bson:"other" json:"other"`

	LabourPayer         Payer `bson:"labour_payer,omitempty" json:"labour_payer,omitempty"`
	CompanionPayer      Payer `bson:"companion_payer,omitempty" json:"companion_payer,omitempty"`
	WeightFeePayer      Payer `bson:"weight_fee_payer,omitempty" json:"weight_fee_payer,omitempty"`
	VehicleRentPayer    Payer `bson:"vehicle_rent_payer,omitempty" json:"vehicle_rent_payer,omitempty"`
	FreightAdvancePayer Payer `bson:"freight_advance_payer,omitempty" json:"freight_advance_payer,omitempty"`
	GumasthaRusulPayer  Payer `bson:"gumastha_rusul_payer,omitempty" json:"gumastha_rusul_payer,omitempty"`
	CashDriverPayer     Payer `bson:"cash_driver_payer,omitempty" json:"cash_driver_payer,omitempty"`
	HamaliPayer         Payer `bson:"hamali_payer,omitempty" json:"hamali_payer,omitempty"`
}

// ExpenseItem is one resolved expense line of a computed settlement: the
// amount actually charged and the payer it was routed to.
type ExpenseItem struct {
	Kind   ExpenseKind `bson:"kind" json:"kind"`
	Amount float64     `bson:"amount" json:"amount"`
	Payer  Payer       `bson:"payer" json:"payer"`
}

// Settlement is the computed snapshot persisted with a load. Once stored it is
// the fixed record of what was owed on that date; recomputation happens only
// on an explicit edit.
type Settlement struct {
	DeductionKg           float64       `bson:"deduction_kg" json:"deduction_kg"`
	NetKg                 float64       `bson:"net_kg" json:"net_kg"`
	NetBags               int           `bson:"net_bags" json:"net_bags"`
	CommissionBags        int           `bson:"commission_bags" json:"commission_bags"`
	CommissionAmount      float64       `bson:"commission_amount" json:"commission_amount"`
	FarmerCommissionShare float64       `bson:"farmer_commission_share" json:"farmer_commission_share"`
	MillCommissionShare   float64       `bson:"mill_commission_share" json:"mill_commission_share"`
	Items                 []ExpenseItem `bson:"items" json:"items"`
	FarmerExpensesTotal   float64       `bson:"farmer_expenses_total" json:"farmer_expenses_total"`
	MillExpensesTotal     float64       `bson:"mill_expenses_total" json:"mill_expenses_total"`
	CompanyExpensesTotal  float64       `bson:"company_expenses_total" json:"company_expenses_total"`
	FarmerGrossAmount     float64       `bson:"farmer_gross_amount" json:"farmer_gross_amount"`
	FarmerTotalDeductions float64       `bson:"farmer_total_deductions" json:"farmer_total_deductions"`
	FarmerPayable         float64       `bson:"farmer_payable" json:"farmer_payable"`
	FarmerPayableRounded  float64       `bson:"farmer_payable_rounded" json:"farmer_payable_rounded"`
	MillGrossAmount       float64       `bson:"mill_gross_amount" json:"mill_gross_amount"`
	MillTotalDeductions   float64       `bson:"mill_total_deductions" json:"mill_total_deductions"`
	MillReceivable        float64       `bson:"mill_receivable" json:"mill_receivable"`
	MillReceivableRounded float64       `bson:"mill_receivable_rounded" json:"mill_receivable_rounded"`
}

// ExpenseTotal sums every resolved line regardless of payer.
func (s Settlement) ExpenseTotal() float64 {
	var total float64
	for _, item := range s.Items {
		total += item.Amount
	}
	return total
}

// Item returns the resolved line of the given kind, if present.
func (s Settlement) Item(kind ExpenseKind) (ExpenseItem, bool) {
	for _, item := range s.Items {
		if item.Kind == kind {
			return item, true
		}
	}
	return ExpenseItem{}, false
}

// Load is one brokered shipment between a farmer and a mill. Core fields are
// immutable after creation; only the payment-tracking fields move.
type Load struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LoadNumber string             `bson:"load_number" json:"load_number"`
	Date       time.Time          `bson:"date" json:"date"`

	FarmerID  primitive.ObjectID `bson:"farmer_id" json:"farmer_id"`
	MillID    primitive.ObjectID `bson:"mill_id" json:"mill_id"`
	VehicleID primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`

	Case         IntakeCase `bson:"case" json:"case"`
	GrossKg      float64    `bson:"gross_kg" json:"gross_kg"`
	TareKg       float64    `bson:"tare_kg" json:"tare_kg"`
	DeclaredBags int        `bson:"declared_bags" json:"declared_bags"`

	BuyRatePerBag  float64 `bson:"buy_rate_per_bag" json:"buy_rate_per_bag"`
	SellRatePerBag float64 `bson:"sell_rate_per_bag" json:"sell_rate_per_bag"`

	CommissionPolicy         CommissionPolicy `bson:"commission_policy" json:"commission_policy"`
	SplitPercent             float64          `bson:"split_percent" json:"split_percent"`
	UseDeclaredForCommission bool             `bson:"use_declared_for_commission" json:"use_declared_for_commission"`

	Expenses   ExpenseInput `bson:"expenses" json:"expenses"`
	Settlement Settlement   `bson:"settlement" json:"settlement"`

	MillPaymentStatus   PaymentStatus `bson:"mill_payment_status" json:"mill_payment_status"`
	MillPaidAmount      float64       `bson:"mill_paid_amount" json:"mill_paid_amount"`
	MillPaidDate        *time.Time    `bson:"mill_paid_date,omitempty" json:"mill_paid_date,omitempty"`
	FarmerPaymentStatus PaymentStatus `bson:"farmer_payment_status" json:"farmer_payment_status"`
	FarmerPaidAmount    float64       `bson:"farmer_paid_amount" json:"farmer_paid_amount"`
	FarmerPaidDate      *time.Time    `bson:"farmer_paid_date,omitempty" json:"farmer_paid_date,omitempty"`
	CreditCutAmount     float64       `bson:"credit_cut_amount" json:"credit_cut_amount"`

	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Active    bool      `bson:"active" json:"active"`
	Version   int       `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MillPending returns the still-unpaid part of the mill's obligation.
func (l Load) MillPending() float64 {
	return l.Settlement.MillReceivableRounded - l.MillPaidAmount
}

// FarmerPending returns the still-unpaid part of the farmer's payable,
// counting an applied credit cut as settled.
func (l Load) FarmerPending() float64 {
	return l.Settlement.FarmerPayableRounded - l.FarmerPaidAmount - l.CreditCutAmount
}
