package models

import "time"

// DailySummary aggregates one trading day's ledger activity. The scheduler
// persists one per day at close.
type DailySummary struct {
	Date            time.Time `bson:"date" json:"date"`
	LoadCount       int       `bson:"load_count" json:"load_count"`
	NetBags         int       `bson:"net_bags" json:"net_bags"`
	NetKg           float64   `bson:"net_kg" json:"net_kg"`
	FarmerPayable   float64   `bson:"farmer_payable" json:"farmer_payable"`
	MillReceivable  float64   `bson:"mill_receivable" json:"mill_receivable"`
	CommissionTotal float64   `bson:"commission_total" json:"commission_total"`
	NetProfit       float64   `bson:"net_profit" json:"net_profit"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// PartyOutstanding is one row of an outstanding-balance report, grouped by
// mill or by farmer.
type PartyOutstanding struct {
	PartyID   string  `json:"party_id"`
	PartyName string  `json:"party_name"`
	LoadCount int     `json:"load_count"`
	Billed    float64 `json:"billed"`
	Paid      float64 `json:"paid"`
	Pending   float64 `json:"pending"`
}

// ProfitReport aggregates per-load profit over a period.
type ProfitReport struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	LoadCount       int       `json:"load_count"`
	RateMargin      float64   `json:"rate_margin"`
	CommissionTotal float64   `json:"commission_total"`
	CreditCutTotal  float64   `json:"credit_cut_total"`
	ExpensesTotal   float64   `json:"expenses_total"`
	NetProfit       float64   `json:"net_profit"`
}
