// internal/domain/pricing/totals.go
package pricing

// Totals is the priced breakdown of an order
type Totals struct {
	ItemTotal      float64 `json:"itemTotal"`
	DeliveryCharge float64 `json:"deliveryCharge"`
	GrandTotal     float64 `json:"grandTotal"`
}

// ComputeTotals prices a cart: delivery is charged per person. Callers
// validate persons >= 1; amounts are not rounded.
func ComputeTotals(cartTotal float64, persons int, fee FeeConfig) Totals {
	delivery := float64(persons) * fee.PerPersonCharge
	return Totals{
		ItemTotal:      cartTotal,
		DeliveryCharge: delivery,
		GrandTotal:     cartTotal + delivery,
	}
}
