// Package format renders amounts and quantities for invoices and reports
// using the Indian numbering system (lakh/crore grouping).
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Rupees renders a monetary amount with the rupee sign and no decimal
// places, e.g. 244296 -> "₹2,44,296". Amounts are rounded half up.
func Rupees(amount float64) string {
	rounded := math.Floor(amount + 0.5)
	return printer.Sprintf("₹%v", number.Decimal(rounded, number.MaxFractionDigits(0)))
}

// Quantity renders a weight or count with grouping and up to two decimal
// places, e.g. 8760.5 -> "8,760.5".
func Quantity(v float64) string {
	return printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

// Count renders an integer count with grouping.
func Count(n int) string {
	return printer.Sprintf("%v", number.Decimal(n))
}
