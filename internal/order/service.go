package order

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/meatkart/meat-delivery-backend/internal/events"
	"github.com/meatkart/meat-delivery-backend/internal/partner"
	"github.com/meatkart/meat-delivery-backend/internal/payment"
	"github.com/meatkart/meat-delivery-backend/internal/shop"
	"github.com/meatkart/meat-delivery-backend/internal/user"
)

var (
	ErrEmptyItems       = errors.New("order must contain at least one item")
	ErrInvalidQuantity  = errors.New("item quantity must be at least 1")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrCannotCancel     = errors.New("Cannot cancel this order")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrNotAssigned      = errors.New("order is not assigned to this partner")
)

// createCodeAttempts bounds retries on order-code collisions.
const createCodeAttempts = 3

// Service orchestrates the order lifecycle: creation, payment, status
// transitions, partner assignment and the side effects attached to them.
type Service struct {
	repo     Repository
	users    user.Repository
	shops    shop.Repository
	partners *partner.Service
	gateway  *payment.Client
	events   *events.Publisher

	// earning is the fixed amount accrued to a partner per delivery.
	earning float64
}

func NewService(repo Repository, users user.Repository, shops shop.Repository,
	partners *partner.Service, gateway *payment.Client, pub *events.Publisher,
	earning float64) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		shops:    shops,
		partners: partners,
		gateway:  gateway,
		events:   pub,
		earning:  earning,
	}
}

// CreateInput is the validated body of a create-order request. Prices are
// taken as submitted by the cart and snapshotted onto the order.
type CreateInput struct {
	UserID      int
	Items       []OrderItem
	Address     DeliveryAddress
	ShopID      int
	ShopName    string
	DeliveryFee float64
}

// Create validates the cart, computes totals server-side and persists a new
// pending order. Customer and shop aggregate counters are bumped
// best-effort after the write; a failed bump is logged, never rolled into
// the response.
func (s *Service) Create(in CreateInput) (Order, error) {
	if len(in.Items) == 0 {
		return Order{}, ErrEmptyItems
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return Order{}, ErrInvalidQuantity
		}
		if it.Price < 0 {
			return Order{}, fmt.Errorf("item %q has negative price", it.Name)
		}
	}

	usr, err := s.users.GetByID(in.UserID)
	if err != nil {
		return Order{}, err
	}
	shp, err := s.shops.GetByID(in.ShopID)
	if err != nil {
		return Order{}, err
	}
	shopName := shp.Name
	if shopName == "" {
		shopName = in.ShopName
	}

	totals := CalculateTotals(in.Items, in.DeliveryFee)
	now := time.Now().UTC()
	ord := Order{
		ID:              uuid.NewString(),
		UserID:          usr.ID,
		UserName:        usr.Name,
		UserPhone:       usr.Phone,
		Items:           in.Items,
		DeliveryAddress: in.Address,
		ShopID:          shp.ID,
		ShopName:        shopName,
		ItemTotal:       totals.ItemTotal,
		DeliveryFee:     totals.DeliveryFee,
		Taxes:           totals.Taxes,
		GrandTotal:      totals.GrandTotal,
		Payment:         PaymentInfo{Status: PaymentPending},
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var created Order
	for attempt := 0; ; attempt++ {
		ord.Code = NewCode()
		created, err = s.repo.Create(ord)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateCode) || attempt+1 >= createCodeAttempts {
			return Order{}, err
		}
	}

	if err := s.users.IncrementOrderStats(usr.ID, created.GrandTotal); err != nil {
		log.Printf("order %s: increment user %d stats: %v", created.Code, usr.ID, err)
	}
	if err := s.shops.IncrementOrderStats(shp.ID, created.GrandTotal); err != nil {
		log.Printf("order %s: increment shop %d stats: %v", created.Code, shp.ID, err)
	}
	s.events.Publish(created.Code, events.OrderCreated, string(created.Status))

	return created, nil
}

// GetForUser returns the order only when it belongs to the customer.
// Foreign orders surface as not found rather than forbidden.
func (s *Service) GetForUser(userID int, orderID string) (Order, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}
	if ord.UserID != userID {
		return Order{}, ErrNotFound
	}
	return ord, nil
}

func (s *Service) ListForUser(userID, page, perPage int) ([]Order, int, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.ListByUser(userID, page, perPage)
}

// TrackForUser resolves an order by its human-facing code for the tracking
// screen.
func (s *Service) TrackForUser(userID int, code string) (Order, error) {
	ord, err := s.repo.GetByCode(code)
	if err != nil {
		return Order{}, err
	}
	if ord.UserID != userID {
		return Order{}, ErrNotFound
	}
	return ord, nil
}

// InitiatePayment creates a gateway intent for the order, tagged with its
// code as the receipt reference. The order itself is not mutated.
func (s *Service) InitiatePayment(userID int, orderID string, amount float64) (*payment.GatewayOrder, string, error) {
	ord, err := s.GetForUser(userID, orderID)
	if err != nil {
		return nil, "", err
	}
	if amount <= 0 {
		amount = ord.GrandTotal
	}
	gw, err := s.gateway.CreateOrder(amount, "INR", ord.Code)
	if err != nil {
		return nil, "", err
	}
	return gw, s.gateway.KeyID, nil
}

// VerifyPayment checks the callback signature and, on success, confirms the
// order. Re-verifying an already-confirmed order with the same identifiers
// is a no-op returning the current state.
func (s *Service) VerifyPayment(userID int, orderID, gatewayOrderID, gatewayPaymentID, signature string) (Order, error) {
	ord, err := s.GetForUser(userID, orderID)
	if err != nil {
		return Order{}, err
	}

	// idempotent re-delivery of the same confirmation
	if ord.Status == StatusConfirmed && ord.Payment.Status == PaymentSuccess &&
		ord.Payment.GatewayOrderID == gatewayOrderID &&
		ord.Payment.GatewayPaymentID == gatewayPaymentID {
		return ord, nil
	}
	if ord.Status != StatusPending {
		return Order{}, ErrInvalidTransition
	}

	if !s.gateway.Verify(gatewayOrderID, gatewayPaymentID, signature) {
		if err := s.repo.MarkPaymentFailed(ord.ID); err != nil {
			log.Printf("order %s: mark payment failed: %v", ord.Code, err)
		}
		return Order{}, ErrInvalidSignature
	}

	pay := PaymentInfo{
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: gatewayPaymentID,
		GatewaySignature: signature,
		Method:           "razorpay",
		Status:           PaymentSuccess,
	}
	if err := s.repo.ConfirmPayment(ord.ID, pay); err != nil {
		return Order{}, err
	}

	confirmed, err := s.repo.GetByID(ord.ID)
	if err != nil {
		return Order{}, err
	}
	s.events.Publish(confirmed.Code, events.OrderStatusChanged, string(confirmed.Status))
	return confirmed, nil
}

// Actor identifies who requested a status change.
type Actor struct {
	Role   string
	UserID int
}

// partnerSettable are the only targets a delivery partner may set.
var partnerSettable = map[Status]bool{
	StatusOutForDelivery: true,
	StatusDelivered:      true,
}

// TransitionStatus applies one legal forward step of the state machine.
// Admins may request any reachable status; partners only
// out_for_delivery/delivered on orders assigned to them. Reaching delivered
// triggers the partner earnings accrual exactly once: the conditional
// update only succeeds for the request that actually performs the move.
func (s *Service) TransitionStatus(orderID string, target Status, actor Actor) (Order, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}

	if actor.Role == "partner" {
		if !ord.AssignedTo(actor.UserID) {
			return Order{}, ErrNotAssigned
		}
		if !partnerSettable[target] {
			return Order{}, ErrInvalidTransition
		}
	}

	if !CanTransition(ord.Status, target) {
		return Order{}, ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ord.ID, []Status{ord.Status}, target); err != nil {
		return Order{}, err
	}

	if target == StatusDelivered && ord.DeliveryPartnerID != nil {
		if err := s.partners.AccrueDelivery(*ord.DeliveryPartnerID, s.earning); err != nil {
			// order history stays the source of truth for earnings
			log.Printf("order %s: accrue delivery for partner %d: %v",
				ord.Code, *ord.DeliveryPartnerID, err)
		}
	}

	updated, err := s.repo.GetByID(ord.ID)
	if err != nil {
		return Order{}, err
	}
	switch target {
	case StatusDelivered:
		s.events.Publish(updated.Code, events.OrderDelivered, string(target))
	case StatusCancelled:
		s.events.Publish(updated.Code, events.OrderCancelled, string(target))
	default:
		s.events.Publish(updated.Code, events.OrderStatusChanged, string(target))
	}
	return updated, nil
}

// Cancel lets the owning customer cancel a pre-terminal order.
func (s *Service) Cancel(userID int, orderID string) (Order, error) {
	ord, err := s.GetForUser(userID, orderID)
	if err != nil {
		return Order{}, err
	}
	if ord.Status.IsTerminal() {
		return Order{}, ErrCannotCancel
	}
	if err := s.repo.UpdateStatus(ord.ID, CancellableStatuses, StatusCancelled); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return Order{}, ErrCannotCancel
		}
		return Order{}, err
	}

	cancelled, err := s.repo.GetByID(ord.ID)
	if err != nil {
		return Order{}, err
	}
	s.events.Publish(cancelled.Code, events.OrderCancelled, string(StatusCancelled))
	return cancelled, nil
}

// AssignPartner attaches a delivery partner to the order, snapshotting the
// partner's name, and flips the partner to busy. Assignment and order
// status are independent axes; this never changes the order status.
func (s *Service) AssignPartner(orderID string, partnerID int) (Order, error) {
	ord, err := s.repo.GetByID(orderID)
	if err != nil {
		return Order{}, err
	}

	p, err := s.partners.GetByID(partnerID)
	if err != nil {
		return Order{}, err
	}

	if err := s.repo.AssignPartner(ord.ID, p.ID, p.Name); err != nil {
		return Order{}, err
	}
	if err := s.partners.MarkBusy(p.ID); err != nil {
		log.Printf("order %s: mark partner %d busy: %v", ord.Code, p.ID, err)
	}
	return s.repo.GetByID(ord.ID)
}
