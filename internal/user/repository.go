package user

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetByID(id int) (User, error)
	// IncrementOrderStats bumps the customer's order count and lifetime
	// spend. Counters are a cache over order history; callers treat a
	// failure as non-fatal.
	IncrementOrderStats(id int, amount float64) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[int]User
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make(map[int]User, len(seed))}
	for _, u := range seed {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *InMemoryRepository) GetByID(id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *InMemoryRepository) IncrementOrderStats(id int, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.TotalOrders++
	u.TotalSpent += amount
	r.users[id] = u
	return nil
}
