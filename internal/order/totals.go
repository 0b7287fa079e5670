package order

import "math"

// Tax applied on the item subtotal.
const taxRate = 0.05

// Totals is the server-computed price breakdown. Clients never supply
// grandTotal; it is always derived here.
type Totals struct {
	ItemTotal   float64 `json:"itemTotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Taxes       float64 `json:"taxes"`
	GrandTotal  float64 `json:"grandTotal"`
}

// CalculateTotals computes the breakdown for a line-item list and delivery
// fee. Pure; callers reject empty item lists before invoking it.
func CalculateTotals(items []OrderItem, deliveryFee float64) Totals {
	var itemTotal float64
	for _, it := range items {
		itemTotal += it.Price * float64(it.Quantity)
	}
	taxes := round2(itemTotal * taxRate)
	return Totals{
		ItemTotal:   itemTotal,
		DeliveryFee: deliveryFee,
		Taxes:       taxes,
		GrandTotal:  itemTotal + deliveryFee + taxes,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
