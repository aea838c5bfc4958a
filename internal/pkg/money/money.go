// internal/pkg/money/money.go
package money

import (
	"github.com/shopspring/decimal"
)

// Format renders an amount with two decimals
func Format(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatRs renders an amount in rupees, e.g. "Rs 850.00"
func FormatRs(amount float64) string {
	return "Rs " + Format(amount)
}

// LineTotal multiplies a unit price by a quantity without float drift
func LineTotal(unitPrice float64, quantity int) float64 {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// Sum adds amounts without float drift
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}
