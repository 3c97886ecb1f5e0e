package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"loanbook/contexts/identity-access/account-service/domain/entities"
	domainerrors "loanbook/contexts/identity-access/account-service/domain/errors"
)

// Store is an in-memory account repository for development wiring and tests.
// It doubles as the Clock and IDGenerator ports.
type Store struct {
	mu sync.RWMutex

	accountsByID map[string]entities.Account
	sequence     uint64
	fixedNow     time.Time
}

func NewStore() *Store {
	return &Store{
		accountsByID: make(map[string]entities.Account),
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
	return fmt.Sprintf("acc_%06d", s.sequence)
}

func (s *Store) Create(_ context.Context, account entities.Account) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accountsByID {
		if strings.EqualFold(existing.Email, account.Email) {
			return entities.Account{}, domainerrors.ErrEmailTaken
		}
	}
	s.accountsByID[account.ID] = account
	return account, nil
}

func (s *Store) GetByID(_ context.Context, id string) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accountsByID[id]
	if !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	return account, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accountsByID {
		if strings.EqualFold(account.Email, email) {
			return account, nil
		}
	}
	return entities.Account{}, domainerrors.ErrAccountNotFound
}

func (s *Store) List(_ context.Context, skip int, limit int) ([]entities.Account, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]entities.Account, 0, len(s.accountsByID))
	for _, account := range s.accountsByID {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	total := int64(len(accounts))
	if skip >= len(accounts) {
		return []entities.Account{}, total, nil
	}
	end := skip + limit
	if end > len(accounts) {
		end = len(accounts)
	}
	return append([]entities.Account(nil), accounts[skip:end]...), total, nil
}

func (s *Store) Update(_ context.Context, account entities.Account) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accountsByID[account.ID]; !ok {
		return entities.Account{}, domainerrors.ErrAccountNotFound
	}
	for id, existing := range s.accountsByID {
		if id != account.ID && strings.EqualFold(existing.Email, account.Email) {
			return entities.Account{}, domainerrors.ErrEmailTaken
		}
	}
	s.accountsByID[account.ID] = account
	return account, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accountsByID[id]; !ok {
		return domainerrors.ErrAccountNotFound
	}
	delete(s.accountsByID, id)
	return nil
}

// AccountExists satisfies the lending-core account directory port.
func (s *Store) AccountExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accountsByID[id]
	return ok, nil
}
