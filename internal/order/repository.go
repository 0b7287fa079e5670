package order

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrInvalidTransition is returned when a status change is not legal
	// from the order's current state, including races where another
	// request moved the order first.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicateCode signals a collision on the human-facing code;
	// callers regenerate and retry.
	ErrDuplicateCode = errors.New("order code already exists")
)

type Repository interface {
	Create(ord Order) (Order, error)
	GetByID(id string) (Order, error)
	GetByCode(code string) (Order, error)
	// ListByUser returns one page of the customer's orders, newest first,
	// along with the total count.
	ListByUser(userID, page, perPage int) ([]Order, int, error)
	// UpdateStatus moves the order to status to only if its current
	// status is one of from; otherwise ErrInvalidTransition. The
	// conditional write is what makes concurrent transitions safe.
	UpdateStatus(id string, from []Status, to Status) error
	// ConfirmPayment persists the verified gateway identifiers, marks the
	// payment successful and advances pending -> confirmed in one write.
	ConfirmPayment(id string, pay PaymentInfo) error
	// MarkPaymentFailed flips a pending payment to failed. Terminal
	// payment states are never overwritten.
	MarkPaymentFailed(id string) error
	AssignPartner(id string, partnerID int, partnerName string) error
}

// InMemoryRepository mirrors the Postgres repository's conditional-update
// semantics under a mutex. Used by service tests and local development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
	codes  map[string]string // code -> id
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders: make(map[string]Order),
		codes:  make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.codes[ord.Code]; exists {
		return Order{}, ErrDuplicateCode
	}
	r.orders[ord.ID] = ord
	r.codes[ord.Code] = ord.ID
	return ord, nil
}

func (r *InMemoryRepository) GetByID(id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ord, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return ord, nil
}

func (r *InMemoryRepository) GetByCode(code string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.codes[code]
	if !ok {
		return Order{}, ErrNotFound
	}
	return r.orders[id], nil
}

func (r *InMemoryRepository) ListByUser(userID, page, perPage int) ([]Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []Order
	for _, ord := range r.orders {
		if ord.UserID == userID {
			all = append(all, ord)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := (page - 1) * perPage
	if start >= total {
		return []Order{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *InMemoryRepository) UpdateStatus(id string, from []Status, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ord, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	matched := false
	for _, f := range from {
		if ord.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return ErrInvalidTransition
	}
	ord.Status = to
	ord.UpdatedAt = time.Now().UTC()
	r.orders[id] = ord
	return nil
}

func (r *InMemoryRepository) ConfirmPayment(id string, pay PaymentInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ord, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	if ord.Status != StatusPending {
		return ErrInvalidTransition
	}
	pay.Status = PaymentSuccess
	ord.Payment = pay
	ord.Status = StatusConfirmed
	ord.UpdatedAt = time.Now().UTC()
	r.orders[id] = ord
	return nil
}

func (r *InMemoryRepository) MarkPaymentFailed(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ord, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	if ord.Payment.Status == PaymentPending {
		ord.Payment.Status = PaymentFailed
		ord.UpdatedAt = time.Now().UTC()
		r.orders[id] = ord
	}
	return nil
}

func (r *InMemoryRepository) AssignPartner(id string, partnerID int, partnerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ord, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	ord.DeliveryPartnerID = &partnerID
	ord.DeliveryPartnerName = partnerName
	ord.UpdatedAt = time.Now().UTC()
	r.orders[id] = ord
	return nil
}
