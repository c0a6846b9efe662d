package poller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/swaplab/swap-history/internal/core/swap"
)

type fakeView struct {
	mu       sync.Mutex
	accounts []swap.Account
	pending  bool
	applied  [][]swap.Account

	appliedCh chan []swap.Account
}

func newFakeView(pending bool, accounts ...swap.Account) *fakeView {
	return &fakeView{
		accounts:  accounts,
		pending:   pending,
		appliedCh: make(chan []swap.Account, 8),
	}
}

func (v *fakeView) Accounts() []swap.Account {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.accounts
}

func (v *fakeView) HasPending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending
}

func (v *fakeView) ApplyRefresh(updated []swap.Account) {
	v.mu.Lock()
	v.applied = append(v.applied, updated)
	v.mu.Unlock()
	v.appliedCh <- updated
}

func (v *fakeView) setPending(pending bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = pending
}

func (v *fakeView) applyCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.applied)
}

type fakeRefresher struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	done    chan struct{}

	refreshFn func(account swap.Account) (swap.Account, bool, error)
}

func (r *fakeRefresher) RefreshAccount(ctx context.Context, account swap.Account) (swap.Account, bool, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		<-r.release
	}
	defer func() {
		if r.done != nil {
			r.done <- struct{}{}
		}
	}()

	if r.refreshFn != nil {
		return r.refreshFn(account)
	}
	return account, false, nil
}

func (r *fakeRefresher) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// testTicker returns a manually driven tick channel.
func testTicker(ticks chan time.Time) TickerFactory {
	return func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}
}

func waitApplied(t *testing.T, view *fakeView) []swap.Account {
	t.Helper()
	select {
	case updated := <-view.appliedCh:
		return updated
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh results to be applied")
		return nil
	}
}

func TestStatusPoller_NoPendingSkipsRefresh(t *testing.T) {
	ticks := make(chan time.Time)
	view := newFakeView(false, swap.Account{ID: "a1"})
	refresher := &fakeRefresher{}

	p := New(view, refresher, Options{Ticker: testTicker(ticks)})
	require.NoError(t, p.Start())

	// Two ticks: once the second send is accepted the first is fully
	// processed, since the loop handles ticks sequentially.
	ticks <- time.Now()
	ticks <- time.Now()
	p.Stop()

	require.Equal(t, 0, refresher.callCount())
	require.Equal(t, 0, view.applyCount())
}

func TestStatusPoller_PendingTriggersRefreshAndApply(t *testing.T) {
	ticks := make(chan time.Time)
	a1 := swap.Account{ID: "a1", Operations: []swap.Operation{{SwapID: "s1", Status: swap.StatusPending}}}
	view := newFakeView(true, a1)

	refresher := &fakeRefresher{
		refreshFn: func(account swap.Account) (swap.Account, bool, error) {
			fresh := account
			fresh.Operations = []swap.Operation{{SwapID: "s1", Status: swap.StatusFinished}}
			return fresh, true, nil
		},
	}

	p := New(view, refresher, Options{Ticker: testTicker(ticks)})
	require.NoError(t, p.Start())
	defer p.Stop()

	ticks <- time.Now()
	updated := waitApplied(t, view)

	require.Len(t, updated, 1)
	require.Equal(t, "a1", updated[0].ID)
	require.Equal(t, swap.StatusFinished, updated[0].Operations[0].Status)
	require.Equal(t, 1, refresher.callCount())
}

func TestStatusPoller_QuiescesOnceNothingPending(t *testing.T) {
	ticks := make(chan time.Time)
	view := newFakeView(true, swap.Account{ID: "a1"})
	refresher := &fakeRefresher{
		refreshFn: func(account swap.Account) (swap.Account, bool, error) {
			return account, true, nil
		},
	}

	p := New(view, refresher, Options{Ticker: testTicker(ticks)})
	require.NoError(t, p.Start())

	ticks <- time.Now()
	waitApplied(t, view)
	require.Equal(t, 1, refresher.callCount())

	// Everything terminal now; further ticks stay Scheduled but idle.
	view.setPending(false)
	ticks <- time.Now()
	ticks <- time.Now()
	p.Stop()

	require.Equal(t, 1, refresher.callCount())
}

func TestStatusPoller_OverlappingTickIsDropped(t *testing.T) {
	ticks := make(chan time.Time)
	view := newFakeView(true, swap.Account{ID: "a1"})
	refresher := &fakeRefresher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		refreshFn: func(account swap.Account) (swap.Account, bool, error) {
			return account, true, nil
		},
	}

	p := New(view, refresher, Options{Ticker: testTicker(ticks)})
	require.NoError(t, p.Start())
	defer p.Stop()

	ticks <- time.Now()
	<-refresher.started

	// Refresh is in flight; this tick must be dropped, not queued.
	ticks <- time.Now()
	ticks <- time.Now()

	close(refresher.release)
	waitApplied(t, view)

	require.Equal(t, 1, refresher.callCount())
	require.Equal(t, 1, view.applyCount())
}

func TestStatusPoller_StopDiscardsInFlightResults(t *testing.T) {
	ticks := make(chan time.Time)
	view := newFakeView(true, swap.Account{ID: "a1"})
	refresher := &fakeRefresher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		done:    make(chan struct{}, 1),
		refreshFn: func(account swap.Account) (swap.Account, bool, error) {
			return account, true, nil
		},
	}

	p := New(view, refresher, Options{Ticker: testTicker(ticks)})
	require.NoError(t, p.Start())

	ticks <- time.Now()
	<-refresher.started

	// Teardown while the refresh is still in flight.
	p.Stop()
	close(refresher.release)
	<-refresher.done

	// The late result must never reach the view.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, view.applyCount())
}

func TestStatusPoller_PartialFailureStillAppliesSuccesses(t *testing.T) {
	ticks := make(chan time.Time)
	a1 := swap.Account{ID: "a1"}
	a2 := swap.Account{ID: "a2"}
	view := newFakeView(true, a1, a2)

	refresher := &fakeRefresher{
		refreshFn: func(account swap.Account) (swap.Account, bool, error) {
			if account.ID == "a1" {
				return swap.Account{}, false, fmt.Errorf("provider unreachable")
			}
			return account, true, nil
		},
	}

	p := New(view, refresher, Options{Ticker: testTicker(ticks)})
	require.NoError(t, p.Start())
	defer p.Stop()

	ticks <- time.Now()
	updated := waitApplied(t, view)

	require.Len(t, updated, 1)
	require.Equal(t, "a2", updated[0].ID)
	require.Equal(t, 2, refresher.callCount())
}

func TestStatusPoller_StartTwice(t *testing.T) {
	ticks := make(chan time.Time)
	p := New(newFakeView(false), &fakeRefresher{}, Options{Ticker: testTicker(ticks)})

	require.NoError(t, p.Start())
	require.ErrorIs(t, p.Start(), ErrAlreadyStarted)

	p.Stop()
	p.Stop() // idempotent

	// Restartable after Stop.
	require.NoError(t, p.Start())
	p.Stop()
}
