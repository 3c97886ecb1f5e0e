package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	authzerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
	"loanbook/contexts/lending-core/loan-service/domain/entities"
	domainerrors "loanbook/contexts/lending-core/loan-service/domain/errors"
	"loanbook/contexts/lending-core/loan-service/ports"
	"loanbook/internal/shared/events"
)

// Store is an in-memory loan repository for development wiring and tests. It
// doubles as the Clock, IDGenerator and outbox ports, and serves the
// authorization service's loan-ownership lookups.
type Store struct {
	mu sync.RWMutex

	loansByID map[string]entities.Loan
	outbox    []outboxRow
	sequence  uint64
	fixedNow  time.Time
}

type outboxRow struct {
	message   ports.OutboxMessage
	published bool
}

func NewStore() *Store {
	return &Store{
		loansByID: make(map[string]entities.Loan),
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
	return fmt.Sprintf("loan_%06d", s.sequence)
}

func (s *Store) CreateWithOutbox(_ context.Context, loan entities.Loan, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loansByID[loan.ID] = loan
	s.outbox = append(s.outbox, outboxRow{
		message: ports.OutboxMessage{
			OutboxID:  envelope.EventID,
			EventType: envelope.EventType,
			Payload:   payload,
			CreatedAt: envelope.OccurredAtUTC,
		},
	})
	return nil
}

func (s *Store) GetByID(_ context.Context, loanID string) (entities.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loan, ok := s.loansByID[loanID]
	if !ok {
		return entities.Loan{}, domainerrors.ErrLoanNotFound
	}
	return loan, nil
}

func (s *Store) List(_ context.Context, filter ports.LoanFilter) ([]entities.Loan, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loans := make([]entities.Loan, 0, len(s.loansByID))
	for _, loan := range s.loansByID {
		if filter.Status != "" && loan.Status != filter.Status {
			continue
		}
		if filter.OwnerID != "" && loan.OwnerID != filter.OwnerID {
			continue
		}
		loans = append(loans, loan)
	}
	sort.Slice(loans, func(i, j int) bool {
		return loans[i].CreatedAt.After(loans[j].CreatedAt)
	})

	total := int64(len(loans))
	if filter.Skip >= len(loans) {
		return []entities.Loan{}, total, nil
	}
	end := filter.Skip + filter.Limit
	if filter.Limit <= 0 || end > len(loans) {
		end = len(loans)
	}
	return append([]entities.Loan(nil), loans[filter.Skip:end]...), total, nil
}

func (s *Store) Update(_ context.Context, loan entities.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loansByID[loan.ID]; !ok {
		return domainerrors.ErrLoanNotFound
	}
	s.loansByID[loan.ID] = loan
	return nil
}

func (s *Store) Delete(_ context.Context, loanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loansByID[loanID]; !ok {
		return domainerrors.ErrLoanNotFound
	}
	delete(s.loansByID, loanID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}

	pending := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		pending = append(pending, row.message)
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			s.outbox[i].published = true
			return nil
		}
	}
	return domainerrors.ErrLoanNotFound
}

// OwnerOfLoan satisfies the authorization service's LoanOwnership port, so a
// missing loan surfaces as that context's sentinel.
func (s *Store) OwnerOfLoan(_ context.Context, loanID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loan, ok := s.loansByID[loanID]
	if !ok {
		return "", authzerrors.ErrLoanNotFound
	}
	return loan.OwnerID, nil
}

// LoanIDsOwnedBy satisfies the authorization service's LoanOwnership port.
func (s *Store) LoanIDsOwnedBy(_ context.Context, accountID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0)
	for id, loan := range s.loansByID {
		if loan.OwnerID == accountID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
