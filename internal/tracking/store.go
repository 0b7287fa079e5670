package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Location is a delivery partner's last reported position.
type Location struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ReportedAt time.Time `json:"reportedAt"`
}

// Store keeps live partner locations in Redis. A nil Store is valid and
// reports no locations, so the service runs without Redis configured.
type Store struct {
	rdb *redis.Client
}

func New(addr string) *Store {
	if addr == "" {
		return nil
	}
	return &Store{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *Store) SetLocation(ctx context.Context, partnerID int, lat, lng float64) error {
	if s == nil {
		return nil
	}
	loc := Location{Latitude: lat, Longitude: lng, ReportedAt: time.Now().UTC()}
	b, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(keyPartnerLocation, partnerID)
	return s.rdb.Set(ctx, key, b, TTLLocation).Err()
}

// GetLocation returns the partner's last position, or nil when none is
// known (missing key, expired, or no Redis configured).
func (s *Store) GetLocation(ctx context.Context, partnerID int) (*Location, error) {
	if s == nil {
		return nil, nil
	}
	key := fmt.Sprintf(keyPartnerLocation, partnerID)
	raw, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var loc Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}
