package core

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// State is what the display layer reads: the most recently completed outcome
// plus the last successful snapshot, which survives failed fetches so an
// error never blanks the display.
type State struct {
	Outcome   FetchOutcome
	Snapshot  *UsageSnapshot // last successful snapshot, nil before first success
	CheckedAt *time.Time     // completion time of the last successful fetch
}

// Engine owns the fetch lifecycle for one provider/account pair: at most one
// round trip in flight, terminal outcomes published atomically, a ticker loop
// with a live-adjustable interval.
type Engine struct {
	provider UsageProvider
	account  AccountConfig
	timeout  time.Duration

	inFlight atomic.Bool

	mu       sync.RWMutex
	state    State
	interval time.Duration
	onUpdate func(State)

	intervalCh chan time.Duration
}

const defaultFetchTimeout = 15 * time.Second

func NewEngine(provider UsageProvider, account AccountConfig, interval time.Duration) *Engine {
	return &Engine{
		provider:   provider,
		account:    account,
		interval:   interval,
		timeout:    defaultFetchTimeout,
		intervalCh: make(chan time.Duration, 1),
	}
}

func (e *Engine) Provider() UsageProvider { return e.provider }

// SetAccount replaces the account used by subsequent fetches, e.g. after the
// stored credential changed.
func (e *Engine) SetAccount(acct AccountConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.account = acct
}

func (e *Engine) accountSnapshot() AccountConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.account
}

// OnUpdate registers the callback invoked after every completed fetch.
func (e *Engine) OnUpdate(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUpdate = fn
}

// State returns the most recently published state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Interval returns the current refresh interval.
func (e *Engine) Interval() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.interval
}

// SetInterval changes the refresh cadence. Takes effect on the running loop
// without waiting out the old period.
func (e *Engine) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	e.interval = d
	e.mu.Unlock()

	select {
	case e.intervalCh <- d:
	default:
	}
}

// Refresh runs one fetch cycle. A call while another cycle is in flight is a
// silent no-op and reports false. The in-flight guard is released via defer
// so no failure path can leave it stuck.
func (e *Engine) Refresh(ctx context.Context) bool {
	if !e.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer e.inFlight.Store(false)

	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	outcome, err := e.provider.Fetch(fetchCtx, e.accountSnapshot())
	if err != nil {
		log.Printf("engine: fetch failed: %v", err)
		outcome = FetchOutcome{Status: StatusUpstream, Message: err.Error()}
	}

	e.publish(outcome)
	return true
}

// publish installs a completed outcome. The snapshot was fully built by the
// provider before this point, so readers switch from the old state to the new
// one in a single step.
func (e *Engine) publish(outcome FetchOutcome) {
	e.mu.Lock()
	e.state.Outcome = outcome
	if outcome.Status == StatusOK && outcome.Snapshot != nil {
		now := time.Now()
		e.state.Snapshot = outcome.Snapshot
		e.state.CheckedAt = &now
	}
	state := e.state
	fn := e.onUpdate
	e.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}

// Run fetches once immediately, then on every tick until the context ends.
// Interval changes restart the ticker.
func (e *Engine) Run(ctx context.Context) {
	e.Refresh(ctx)

	ticker := time.NewTicker(e.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("engine: context cancelled, stopping refresh loop")
			return
		case d := <-e.intervalCh:
			ticker.Reset(d)
		case <-ticker.C:
			e.Refresh(ctx)
		}
	}
}
