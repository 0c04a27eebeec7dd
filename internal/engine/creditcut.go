package engine

import (
	"math"
	"time"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
)

// CreditCutResult describes the early-payment discount for one load payout.
// It layers on top of the stored farmer payable and never rewrites it.
type CreditCutResult struct {
	DaysDiff   int     `json:"days_diff"`
	Eligible   bool    `json:"eligible"`
	CreditCut  float64 `json:"credit_cut"`
	NetPayment float64 `json:"net_payment"`
}

// CalculateCreditCut computes the discount for paying a farmer within the
// configured window. The window is inclusive: paying on day CreditCutDays
// still qualifies. Payments dated before the load are never eligible.
func CalculateCreditCut(loadDate, paymentDate time.Time, payable float64, s models.Settings) CreditCutResult {
	days := int(math.Floor(startOfDay(paymentDate).Sub(startOfDay(loadDate)).Hours() / 24))

	if days < 0 || days > s.CreditCutDays {
		return CreditCutResult{DaysDiff: days, NetPayment: payable}
	}

	cut := math.Round(payable * s.CreditCutPercent / 100)
	return CreditCutResult{
		DaysDiff:   days,
		Eligible:   true,
		CreditCut:  cut,
		NetPayment: payable - cut,
	}
}
