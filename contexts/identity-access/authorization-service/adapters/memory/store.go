package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
)

type cacheRecord struct {
	LoanIDs   []string
	ExpiresAt time.Time
}

// Store is an in-memory ownership fixture plus cache, used for development
// wiring and tests. It doubles as the Clock port.
type Store struct {
	mu sync.RWMutex

	ownerByLoanID  map[string]string
	cacheByAccount map[string]cacheRecord
	fixedNow       time.Time
}

func NewStore() *Store {
	return &Store{
		ownerByLoanID:  make(map[string]string),
		cacheByAccount: make(map[string]cacheRecord),
	}
}

// AddLoan seeds a loan/owner pair.
func (s *Store) AddLoan(loanID string, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerByLoanID[loanID] = ownerID
}

// RemoveLoan drops a seeded loan.
func (s *Store) RemoveLoan(loanID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ownerByLoanID, loanID)
}

// SetNow pins the clock for expiry tests. Zero time falls back to wall clock.
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

func (s *Store) OwnerOfLoan(_ context.Context, loanID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ownerID, ok := s.ownerByLoanID[loanID]
	if !ok {
		return "", domainerrors.ErrLoanNotFound
	}
	return ownerID, nil
}

func (s *Store) LoanIDsOwnedBy(_ context.Context, accountID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loanIDs := make([]string, 0)
	for loanID, ownerID := range s.ownerByLoanID {
		if ownerID == accountID {
			loanIDs = append(loanIDs, loanID)
		}
	}
	sort.Strings(loanIDs)
	return loanIDs, nil
}

func (s *Store) Get(_ context.Context, accountID string, now time.Time) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.cacheByAccount[accountID]
	if !ok {
		return nil, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.UTC().After(record.ExpiresAt.UTC()) {
		delete(s.cacheByAccount, accountID)
		return nil, false, nil
	}
	return append([]string(nil), record.LoanIDs...), true, nil
}

func (s *Store) Set(_ context.Context, accountID string, loanIDs []string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheByAccount[accountID] = cacheRecord{
		LoanIDs:   append([]string(nil), loanIDs...),
		ExpiresAt: expiresAt,
	}
	return nil
}

func (s *Store) Invalidate(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cacheByAccount, accountID)
	return nil
}
