package store

import (
	"sync"

	"github.com/swaplab/swap-history/internal/core/swap"
)

// OperationStore holds the current set of account snapshots. It is the only
// mutable shared state in the system: accounts are replaced whole-value by
// identity, never mutated in place, and every read hands out a consistent
// copy so aggregation never iterates a collection mid-replacement.
type OperationStore struct {
	mu       sync.RWMutex
	accounts []swap.Account
	index    map[string]int
}

// New creates a store preloaded with the given account snapshots.
func New(accounts []swap.Account) *OperationStore {
	s := &OperationStore{}
	s.SetAll(accounts)
	return s
}

// Snapshot returns a copy of the current account set. The copy is safe to
// iterate while the store is concurrently updated.
func (s *OperationStore) Snapshot() []swap.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]swap.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// SetAll replaces the entire account set. Used when the account provider
// supplies a fresh list.
func (s *OperationStore) SetAll(accounts []swap.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make([]swap.Account, len(accounts))
	copy(s.accounts, accounts)
	s.index = make(map[string]int, len(accounts))
	for i, a := range s.accounts {
		s.index[a.ID] = i
	}
}

// Replace installs an updated snapshot for one account, matched by ID.
// Returns false when no account with that ID exists; unknown accounts are
// never added here — the provider owns which accounts exist.
func (s *OperationStore) Replace(account swap.Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[account.ID]
	if !ok {
		return false
	}
	s.accounts[i] = account
	return true
}

// Len returns the number of accounts currently held.
func (s *OperationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
