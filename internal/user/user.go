package user

// User is the customer subset the order flow needs: identity and display
// fields copied onto orders, plus aggregate counters bumped at creation.
type User struct {
	ID          int     `json:"userId"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	TotalOrders int     `json:"totalOrders"`
	TotalSpent  float64 `json:"totalSpent"`
}
