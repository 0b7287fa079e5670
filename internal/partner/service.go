package partner

import "errors"

var ErrInvalidStatus = errors.New("invalid partner status")

// Service wraps partner state changes. Earnings accrual is only reached
// through the order service's delivered transition, never from a handler.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) GetByID(id int) (DeliveryPartner, error) {
	return s.repo.GetByID(id)
}

// SetStatus applies a partner-initiated presence change. Busy is reserved
// for order assignment and cannot be self-set.
func (s *Service) SetStatus(id int, raw string) (DeliveryPartner, error) {
	status, ok := ParseStatus(raw)
	if !ok || status == StatusBusy {
		return DeliveryPartner{}, ErrInvalidStatus
	}
	if err := s.repo.SetStatus(id, status); err != nil {
		return DeliveryPartner{}, err
	}
	return s.repo.GetByID(id)
}

// MarkBusy flips the partner to busy on order assignment.
func (s *Service) MarkBusy(id int) error {
	return s.repo.SetStatus(id, StatusBusy)
}

// AccrueDelivery credits one completed delivery at the given amount.
func (s *Service) AccrueDelivery(id int, amount float64) error {
	return s.repo.AccrueDelivery(id, amount)
}
