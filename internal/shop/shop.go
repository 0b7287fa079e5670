package shop

// Shop is the seller subset the order flow needs.
type Shop struct {
	ID           int     `json:"shopId"`
	Name         string  `json:"name"`
	TotalOrders  int     `json:"totalOrders"`
	TotalRevenue float64 `json:"totalRevenue"`
}
