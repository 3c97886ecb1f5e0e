package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"loanbook/contexts/lending-core/payment-service/domain/entities"
	domainerrors "loanbook/contexts/lending-core/payment-service/domain/errors"
	"loanbook/contexts/lending-core/payment-service/ports"
)

// Store is an in-memory payment repository for development wiring and tests.
// It doubles as the Clock and IDGenerator ports and serves the loan service's
// payment counter.
type Store struct {
	mu sync.RWMutex

	paymentsByID map[string]entities.Payment
	sequence     uint64
	fixedNow     time.Time
}

func NewStore() *Store {
	return &Store{
		paymentsByID: make(map[string]entities.Payment),
	}
}

// SetNow pins the clock. Zero time falls back to wall clock.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixedNow = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fixedNow.IsZero() {
		return s.fixedNow
	}
	return time.Now().UTC()
}

func (s *Store) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return fmt.Sprintf("pay_%06d", s.sequence)
}

func (s *Store) Create(_ context.Context, payment entities.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentsByID[payment.ID] = payment
	return nil
}

func (s *Store) GetByID(_ context.Context, paymentID string) (entities.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payment, ok := s.paymentsByID[paymentID]
	if !ok {
		return entities.Payment{}, domainerrors.ErrPaymentNotFound
	}
	return payment, nil
}

func (s *Store) List(_ context.Context, filter ports.PaymentFilter) ([]entities.Payment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed := make(map[string]bool, len(filter.LoanIDs))
	for _, id := range filter.LoanIDs {
		allowed[id] = true
	}

	payments := make([]entities.Payment, 0, len(s.paymentsByID))
	for _, payment := range s.paymentsByID {
		if filter.Status != "" && payment.Status != filter.Status {
			continue
		}
		if filter.LoanID != "" && payment.LoanID != filter.LoanID {
			continue
		}
		if len(allowed) > 0 && !allowed[payment.LoanID] {
			continue
		}
		payments = append(payments, payment)
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})

	total := int64(len(payments))
	if filter.Skip >= len(payments) {
		return []entities.Payment{}, total, nil
	}
	end := filter.Skip + filter.Limit
	if filter.Limit <= 0 || end > len(payments) {
		end = len(payments)
	}
	return append([]entities.Payment(nil), payments[filter.Skip:end]...), total, nil
}

func (s *Store) Update(_ context.Context, payment entities.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paymentsByID[payment.ID]; !ok {
		return domainerrors.ErrPaymentNotFound
	}
	s.paymentsByID[payment.ID] = payment
	return nil
}

func (s *Store) Delete(_ context.Context, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paymentsByID[paymentID]; !ok {
		return domainerrors.ErrPaymentNotFound
	}
	delete(s.paymentsByID, paymentID)
	return nil
}

// CountByLoan satisfies the loan service's PaymentCounter port.
func (s *Store) CountByLoan(_ context.Context, loanID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, payment := range s.paymentsByID {
		if payment.LoanID == loanID {
			count++
		}
	}
	return count, nil
}
