package engine

import "github.com/ricetradesolutions/riceledger/internal/domain/models"

// InvoiceItem is one labelled line of an ADD/LESS invoice section.
type InvoiceItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Invoice is the ADD/LESS breakdown of a mill invoice: the base sale amount,
// charges added on top, and deductions taken off.
type Invoice struct {
	BaseAmount     float64       `json:"base_amount"`
	AddItems       []InvoiceItem `json:"add_items"`
	TotalAdd       float64       `json:"total_add"`
	AmountAfterAdd float64       `json:"amount_after_add"`
	LessItems      []InvoiceItem `json:"less_items"`
	TotalLess      float64       `json:"total_less"`
	FinalAmount    float64       `json:"final_amount"`
}

var invoiceLabels = map[models.ExpenseKind]string{
	models.ExpenseLabour:         "Labour",
	models.ExpenseCompanion:      "Companion",
	models.ExpenseWeightFee:      "Weightment",
	models.ExpenseVehicleRent:    "Freight/Vehicle Rent",
	models.ExpenseFreightAdvance: "Freight Advance",
	models.ExpenseGumasthaRusul:  "Gumastha Rusul",
	models.ExpenseCashDriver:     "Cash Driver",
	models.ExpenseHamali:         "Hamali",
	models.ExpenseOther:          "Other Expenses",
}

// addSection lines ride on top of the base amount; every other expense line
// is deducted in the LESS section. Zero-amount lines are omitted.
var addSection = map[models.ExpenseKind]bool{
	models.ExpenseFreightAdvance: true,
	models.ExpenseVehicleRent:    true,
}

// InvoiceBreakdown renders a load's settlement snapshot as the ADD/LESS
// invoice document used for mill billing.
func InvoiceBreakdown(load models.Load) Invoice {
	st := load.Settlement

	inv := Invoice{BaseAmount: st.MillGrossAmount}

	if st.CommissionAmount > 0 {
		inv.AddItems = append(inv.AddItems, InvoiceItem{Label: "Brokerage", Amount: st.CommissionAmount})
		inv.TotalAdd += st.CommissionAmount
	}
	for _, item := range st.Items {
		if item.Amount <= 0 {
			continue
		}
		line := InvoiceItem{Label: invoiceLabels[item.Kind], Amount: item.Amount}
		if addSection[item.Kind] {
			inv.AddItems = append(inv.AddItems, line)
			inv.TotalAdd += item.Amount
		} else {
			inv.LessItems = append(inv.LessItems, line)
			inv.TotalLess += item.Amount
		}
	}

	inv.AmountAfterAdd = inv.BaseAmount + inv.TotalAdd
	inv.FinalAmount = inv.AmountAfterAdd - inv.TotalLess
	return inv
}

// Profit breaks down the broker's take on a single load.
type Profit struct {
	RateMargin       float64 `json:"rate_margin"`
	CommissionIncome float64 `json:"commission_income"`
	CreditCutIncome  float64 `json:"credit_cut_income"`
	TotalIncome      float64 `json:"total_income"`
	TotalExpenses    float64 `json:"total_expenses"`
	NetProfit        float64 `json:"net_profit"`
}

// CalculateProfit derives the broker's profit on a load: the buy/sell rate
// margin plus commission plus any credit cut retained, minus the expenses the
// company itself bore.
func CalculateProfit(load models.Load) Profit {
	st := load.Settlement

	margin := (load.SellRatePerBag - load.BuyRatePerBag) * float64(st.NetBags)
	income := margin + st.CommissionAmount + load.CreditCutAmount

	return Profit{
		RateMargin:       margin,
		CommissionIncome: st.CommissionAmount,
		CreditCutIncome:  load.CreditCutAmount,
		TotalIncome:      income,
		TotalExpenses:    st.CompanyExpensesTotal,
		NetProfit:        income - st.CompanyExpensesTotal,
	}
}
