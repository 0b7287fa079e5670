package partner

// Operational status of a delivery partner. Busy is system-set on order
// assignment; online/offline are partner-initiated.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusBusy    Status = "busy"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusOnline, StatusOffline, StatusBusy:
		return Status(s), true
	}
	return "", false
}

// DeliveryPartner carries the earnings-relevant counters. The counters are
// a cache: summing delivered orders per partner is the ground truth if they
// ever drift. Resetting the today/weekly/monthly windows is an external
// scheduled concern, not done here.
type DeliveryPartner struct {
	ID              int     `json:"partnerId"`
	Name            string  `json:"name"`
	Status          Status  `json:"status"`
	TotalDeliveries int     `json:"totalDeliveries"`
	TotalEarnings   float64 `json:"totalEarnings"`
	TodayDeliveries int     `json:"todayDeliveries"`
	TodayEarnings   float64 `json:"todayEarnings"`
	WeeklyEarnings  float64 `json:"weeklyEarnings"`
	MonthlyEarnings float64 `json:"monthlyEarnings"`
}
