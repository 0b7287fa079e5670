package order

import "time"

// OrderItem is a line item with name and price snapshotted at creation.
// The snapshot is intentional: later catalog edits must not change what a
// customer was billed.
type OrderItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// DeliveryAddress is the address snapshot taken when the order is placed.
type DeliveryAddress struct {
	Label     string   `json:"label,omitempty"`
	Address   string   `json:"address"`
	IsDefault bool     `json:"isDefault,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// PaymentInfo tracks the single payment attempt attached to an order.
type PaymentInfo struct {
	GatewayOrderID   string        `json:"razorpayOrderId,omitempty"`
	GatewayPaymentID string        `json:"razorpayPaymentId,omitempty"`
	GatewaySignature string        `json:"razorpaySignature,omitempty"`
	Method           string        `json:"method,omitempty"`
	Status           PaymentStatus `json:"status"`
}

// Order is the central record. ID is the storage key; Code is the
// human-facing identifier printed on receipts and used as the gateway
// receipt reference. UserName/UserPhone/ShopName/DeliveryPartnerName are
// display snapshots copied at create/assign time and are not live-synced.
type Order struct {
	ID   string `json:"id"`
	Code string `json:"orderId"`

	UserID    int    `json:"userId"`
	UserName  string `json:"userName"`
	UserPhone string `json:"userPhone,omitempty"`

	Items           []OrderItem     `json:"items"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`

	ShopID   int    `json:"shopId"`
	ShopName string `json:"shopName"`

	ItemTotal   float64 `json:"itemTotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	Taxes       float64 `json:"taxes"`
	GrandTotal  float64 `json:"grandTotal"`

	Payment PaymentInfo `json:"payment"`
	Status  Status      `json:"status"`

	DeliveryPartnerID   *int   `json:"deliveryPartnerId,omitempty"`
	DeliveryPartnerName string `json:"deliveryPartnerName,omitempty"`

	EstimatedDelivery string `json:"estimatedDeliveryTime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AssignedTo reports whether the order is assigned to the given partner.
func (o Order) AssignedTo(partnerID int) bool {
	return o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == partnerID
}
