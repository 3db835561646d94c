package accounts

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	ErrNotFound          = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

// Store holds accounts keyed by username. Accounts are never deleted.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewStore() *Store {
	return &Store{accounts: make(map[string]Account)}
}

func (s *Store) Create(a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.Username]; ok {
		return fmt.Errorf("create %s: %w", a.Username, ErrDuplicateUsername)
	}
	s.accounts[a.Username] = a
	return nil
}

func (s *Store) Find(username string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[username]
	if !ok {
		return Account{}, fmt.Errorf("find %s: %w", username, ErrNotFound)
	}
	return a, nil
}

func (s *Store) Exists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[username]
	return ok
}

func (s *Store) Update(a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.Username]; !ok {
		return fmt.Errorf("update %s: %w", a.Username, ErrNotFound)
	}
	s.accounts[a.Username] = a
	return nil
}

// All returns every account ordered by username.
func (s *Store) All() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Account) int { return strings.Compare(a.Username, b.Username) })
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
