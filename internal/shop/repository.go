package shop

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("shop not found")

type Repository interface {
	GetByID(id int) (Shop, error)
	// IncrementOrderStats bumps the shop's order count and revenue.
	// Best-effort cache over order history.
	IncrementOrderStats(id int, amount float64) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	shops map[int]Shop
}

func NewInMemoryRepository(seed []Shop) *InMemoryRepository {
	repo := &InMemoryRepository{shops: make(map[int]Shop, len(seed))}
	for _, s := range seed {
		repo.shops[s.ID] = s
	}
	return repo
}

func (r *InMemoryRepository) GetByID(id int) (Shop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shops[id]
	if !ok {
		return Shop{}, ErrNotFound
	}
	return s, nil
}

func (r *InMemoryRepository) IncrementOrderStats(id int, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shops[id]
	if !ok {
		return ErrNotFound
	}
	s.TotalOrders++
	s.TotalRevenue += amount
	r.shops[id] = s
	return nil
}
