package partner

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("delivery partner not found")

type Repository interface {
	GetByID(id int) (DeliveryPartner, error)
	SetStatus(id int, status Status) error
	// AccrueDelivery increments all delivery/earnings counters by one
	// delivery at the given amount, atomically.
	AccrueDelivery(id int, amount float64) error
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	partners map[int]DeliveryPartner
}

func NewInMemoryRepository(seed []DeliveryPartner) *InMemoryRepository {
	repo := &InMemoryRepository{partners: make(map[int]DeliveryPartner, len(seed))}
	for _, p := range seed {
		repo.partners[p.ID] = p
	}
	return repo
}

func (r *InMemoryRepository) GetByID(id int) (DeliveryPartner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.partners[id]
	if !ok {
		return DeliveryPartner{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) SetStatus(id int, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.partners[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	r.partners[id] = p
	return nil
}

func (r *InMemoryRepository) AccrueDelivery(id int, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.partners[id]
	if !ok {
		return ErrNotFound
	}
	p.TotalDeliveries++
	p.TodayDeliveries++
	p.TotalEarnings += amount
	p.TodayEarnings += amount
	p.WeeklyEarnings += amount
	p.MonthlyEarnings += amount
	r.partners[id] = p
	return nil
}
