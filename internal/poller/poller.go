package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swaplab/swap-history/internal/core/swap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultInterval      = 10 * time.Second
	defaultMaxConcurrent = 8
)

// ErrAlreadyStarted is returned by Start when the poller is already running.
var ErrAlreadyStarted = errors.New("poller already started")

// Refresher requests updated swap statuses for one account from the status
// provider. It returns the refreshed account snapshot and changed=true, or
// changed=false when the provider reports nothing changed (the account is
// then left untouched).
type Refresher interface {
	RefreshAccount(ctx context.Context, account swap.Account) (swap.Account, bool, error)
}

// HistoryView is the poller's window onto the aggregated state.
type HistoryView interface {
	// Accounts returns a consistent snapshot of the current account set.
	Accounts() []swap.Account

	// HasPending reports whether any operation is still non-terminal.
	HasPending() bool

	// ApplyRefresh atomically installs updated account snapshots and
	// re-aggregates.
	ApplyRefresh(updated []swap.Account)
}

// TickerFactory produces the tick channel driving the poll loop, plus a
// stop function. Injected so tests can drive ticks deterministically.
type TickerFactory func(interval time.Duration) (<-chan time.Time, func())

func defaultTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Poller state. Scheduled means the timer is armed and waiting; Refreshing
// means a refresh fan-out from a previous tick is still in flight.
const (
	stateIdle int32 = iota
	stateScheduled
	stateRefreshing
)

// Options controls poll cadence and refresh fan-out width.
type Options struct {
	Interval      time.Duration
	MaxConcurrent int
	Ticker        TickerFactory
}

func (o Options) normalized() Options {
	n := o
	if n.Interval <= 0 {
		n.Interval = defaultInterval
	}
	if n.MaxConcurrent <= 0 {
		n.MaxConcurrent = defaultMaxConcurrent
	}
	if n.Ticker == nil {
		n.Ticker = defaultTicker
	}
	return n
}

// StatusPoller drives the periodic status refresh. On each tick it consults
// HasPending and, only when something is still pending, fans out one
// concurrent refresh per account (bounded by MaxConcurrent), joins all
// results, and applies them in one atomic step.
//
// A tick that fires while a previous refresh is still in flight is dropped,
// never queued: refresh rate is throttled naturally by request latency.
// Stop cancels the timer; cancellation is cooperative — an in-flight
// refresh is not interrupted, its results are discarded at the apply
// boundary.
type StatusPoller struct {
	view      HistoryView
	refresher Refresher
	opts      Options

	state  atomic.Int32
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a poller in the Idle state.
func New(view HistoryView, refresher Refresher, opts Options) *StatusPoller {
	return &StatusPoller{
		view:      view,
		refresher: refresher,
		opts:      opts.normalized(),
	}
}

// Start arms the repeating timer and begins ticking. Idle → Scheduled.
func (p *StatusPoller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticks, stopTicker := p.opts.Ticker(p.opts.Interval)

	p.cancel = cancel
	p.done = make(chan struct{})
	p.state.Store(stateScheduled)

	slog.Info("[Poller] Started", "interval", p.opts.Interval, "max_concurrent", p.opts.MaxConcurrent)

	go p.run(ctx, ticks, stopTicker)
	return nil
}

// Stop cancels the timer and waits for the poll loop to exit. A refresh
// still completing after Stop becomes a no-op at result application.
// Idempotent.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
	p.state.Store(stateIdle)

	slog.Info("[Poller] Stopped")
}

func (p *StatusPoller) run(ctx context.Context, ticks <-chan time.Time, stopTicker func()) {
	defer stopTicker()
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			p.onTick(ctx)
		}
	}
}

func (p *StatusPoller) onTick(ctx context.Context) {
	if !p.view.HasPending() {
		// Nothing non-terminal; stay Scheduled and wait for the next tick.
		return
	}

	if !p.state.CompareAndSwap(stateScheduled, stateRefreshing) {
		slog.Debug("[Poller] Dropping tick, refresh still in flight")
		return
	}

	go func() {
		defer p.state.CompareAndSwap(stateRefreshing, stateScheduled)
		p.refresh(ctx)
	}()
}

// refresh fans out one request per account, joins all of them, then applies
// the successful changed results in a single atomic step. A failed account
// never aborts the batch: it is logged and retried on the next eligible
// tick.
func (p *StatusPoller) refresh(ctx context.Context) {
	accounts := p.view.Accounts()
	if len(accounts) == 0 {
		return
	}

	var (
		mu      sync.Mutex
		updated []swap.Account
		failed  int
	)

	g := new(errgroup.Group)
	g.SetLimit(p.opts.MaxConcurrent)
	for _, account := range accounts {
		account := account
		g.Go(func() error {
			fresh, changed, err := p.refresher.RefreshAccount(ctx, account)
			if err != nil {
				slog.Warn("[Poller] Account refresh failed", "account_id", account.ID, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			if !changed {
				return nil
			}
			mu.Lock()
			updated = append(updated, fresh)
			mu.Unlock()
			return nil
		})
	}
	// Worker funcs always return nil; partial failure is per-account.
	_ = g.Wait()

	// Cancellation boundary: results from a refresh that outlived Stop are
	// dropped here, never applied.
	if ctx.Err() != nil {
		slog.Debug("[Poller] Discarding refresh results after stop", "updated", len(updated))
		return
	}

	slog.Info("[Poller] Refresh complete",
		"accounts", len(accounts),
		"updated", len(updated),
		"failed", failed,
	)
	p.view.ApplyRefresh(updated)
}
