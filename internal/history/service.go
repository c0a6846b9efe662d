package history

import (
	"log/slog"
	"sync"
	"time"

	corehistory "github.com/swaplab/swap-history/internal/core/history"
	"github.com/swaplab/swap-history/internal/core/swap"
	"github.com/swaplab/swap-history/internal/store"
)

// Service owns the aggregated history lifecycle: it holds the operation
// store, re-aggregates whenever account data changes, and publishes the
// result as an atomically swapped snapshot.
//
// All mutation goes through Reload/ApplyRefresh, which replace store state
// and install the recomputed History under one lock. Readers therefore
// observe either fully the pre-refresh or fully the post-refresh view,
// never a mix.
type Service struct {
	store   *store.OperationStore
	pending swap.StatusSet
	loc     *time.Location

	mu      sync.RWMutex
	current corehistory.History
}

// NewService creates a history service. pending is the injected set of
// non-terminal statuses; loc fixes the day-bucketing timezone.
func NewService(st *store.OperationStore, pending swap.StatusSet, loc *time.Location) *Service {
	s := &Service{
		store:   st,
		pending: pending,
		loc:     loc,
	}
	s.recompute()
	return s
}

// Reload replaces the whole account set (a fresh list from the account
// provider) and rebuilds the history.
func (s *Service) Reload(accounts []swap.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.SetAll(accounts)
	s.current = corehistory.Aggregate(s.store.Snapshot(), s.loc)

	slog.Info("[History] Reloaded accounts",
		"accounts", len(accounts),
		"sections", len(s.current),
		"operations", s.current.OperationCount(),
	)
}

// ApplyRefresh installs updated account snapshots from one poll tick and
// re-aggregates once. Accounts unknown to the store are skipped.
func (s *Service) ApplyRefresh(updated []swap.Account) {
	if len(updated) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for _, account := range updated {
		if s.store.Replace(account) {
			applied++
		} else {
			slog.Warn("[History] Skipping refresh result for unknown account", "account_id", account.ID)
		}
	}
	if applied == 0 {
		return
	}
	s.current = corehistory.Aggregate(s.store.Snapshot(), s.loc)

	slog.Info("[History] Applied refresh results",
		"accounts_updated", applied,
		"sections", len(s.current),
	)
}

// Current returns the latest aggregated history snapshot.
func (s *Service) Current() corehistory.History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// HasPending reports whether the current history still contains operations
// in a non-terminal status.
func (s *Service) HasPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return corehistory.HasPending(s.current, s.pending)
}

// Accounts returns a consistent copy of the current account set, for the
// poller's per-account refresh fan-out.
func (s *Service) Accounts() []swap.Account {
	return s.store.Snapshot()
}

func (s *Service) recompute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = corehistory.Aggregate(s.store.Snapshot(), s.loc)
}
