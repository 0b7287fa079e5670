package tracking

import "time"

const (
	// Last reported partner position: partner_location:{partner_id}
	keyPartnerLocation = "partner_location:%d"
)

// Locations older than this are treated as unknown.
var TTLLocation = 5 * time.Minute
