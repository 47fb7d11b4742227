// Package pin coordinates pin and unpin mutations against the gateway while
// keeping the local explorable and pinned collections consistent with it.
package pin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stockboard/internal/domain"
)

// DefaultRevertAfter is how long a failed pin keeps its error state.
const DefaultRevertAfter = 3 * time.Second

var (
	// ErrInFlight is returned when a pin for the same ticker is still pending.
	ErrInFlight = errors.New("pin already in flight")
	// ErrDeclined is returned when the user does not confirm an unpin.
	ErrDeclined = errors.New("unpin declined")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("coordinator closed")
)

// State is the per-ticker mutation state. Idle tickers are not tracked.
type State int

const (
	Idle State = iota
	Pinning
	Error
)

func (s State) String() string {
	switch s {
	case Pinning:
		return "pinning"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// Gateway is the subset of the gateway client the coordinator mutates through.
type Gateway interface {
	AddPinned(ctx context.Context, ticker string) error
	RemovePinned(ctx context.Context, ticker string) error
}

// Alerter is told about unpin failures the user must see.
type Alerter interface {
	Alert(ticker string, err error)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(ticker string, err error)

func (f AlertFunc) Alert(ticker string, err error) { f(ticker, err) }

// Stopper cancels a scheduled callback. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Stopper

func realAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Options configures a Coordinator. Zero values pick defaults.
type Options struct {
	RevertAfter time.Duration
	Confirmer   Confirmer // defaults to AutoConfirm
	Alerter     Alerter   // defaults to logging the failure
	Logger      *slog.Logger
	AfterFunc   AfterFunc // defaults to time.AfterFunc
}

type revertTimer struct {
	stop Stopper
}

// Coordinator owns the explorable and pinned collections and the per-ticker
// pin state. Local collections change only after the gateway confirms the
// mutation. All methods are safe for concurrent use; no lock is held across
// a gateway call or a callback.
type Coordinator struct {
	gw          Gateway
	confirm     Confirmer
	alert       Alerter
	revertAfter time.Duration
	afterFunc   AfterFunc
	log         *slog.Logger

	mu         sync.Mutex
	explorable []domain.StockRecord
	pinned     []domain.StockRecord
	states     map[string]State
	timers     map[string]*revertTimer
	onChange   func()
	closed     bool
}

// New creates a Coordinator over gw.
func New(gw Gateway, opts Options) *Coordinator {
	c := &Coordinator{
		gw:          gw,
		confirm:     opts.Confirmer,
		alert:       opts.Alerter,
		revertAfter: opts.RevertAfter,
		afterFunc:   opts.AfterFunc,
		log:         opts.Logger,
		states:      make(map[string]State),
		timers:      make(map[string]*revertTimer),
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.confirm == nil {
		c.confirm = AutoConfirm
	}
	if c.alert == nil {
		log := c.log
		c.alert = AlertFunc(func(ticker string, err error) {
			log.Error("unpin failed", "ticker", ticker, "error", err)
		})
	}
	if c.revertAfter <= 0 {
		c.revertAfter = DefaultRevertAfter
	}
	if c.afterFunc == nil {
		c.afterFunc = realAfterFunc
	}
	return c
}

// OnChange registers fn to run after every observable state change. It
// replaces any previous hook and runs on the goroutine that made the change.
func (c *Coordinator) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	fn := c.onChange
	closed := c.closed
	c.mu.Unlock()
	if fn != nil && !closed {
		fn()
	}
}

// Pin adds ticker to the user's pinned list. A second Pin for a ticker that
// is still pending returns ErrInFlight without calling the gateway. On
// success the record moves from the explorable to the pinned collection. On
// failure the ticker shows Error until RevertAfter elapses and the
// collections are left alone. A ticker with no explorable record is pinned
// at the gateway only; its row appears with the next SetPinned.
func (c *Coordinator) Pin(ctx context.Context, ticker string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.states[ticker] == Pinning {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.stopTimerLocked(ticker)
	c.states[ticker] = Pinning
	c.mu.Unlock()
	c.notify()

	err := c.gw.AddPinned(ctx, ticker)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return err
	}
	if err != nil {
		c.states[ticker] = Error
		t := &revertTimer{}
		c.timers[ticker] = t
		c.mu.Unlock()

		stop := c.afterFunc(c.revertAfter, func() { c.revert(ticker, t) })
		c.mu.Lock()
		if c.timers[ticker] == t {
			t.stop = stop
		} else {
			stop.Stop()
		}
		c.mu.Unlock()

		c.log.Warn("pin failed", "ticker", ticker, "error", err)
		c.notify()
		return fmt.Errorf("pin %s: %w", ticker, err)
	}

	delete(c.states, ticker)
	if i := indexOf(c.explorable, ticker); i >= 0 {
		rec := c.explorable[i]
		c.explorable = removeAt(c.explorable, i)
		if indexOf(c.pinned, ticker) < 0 {
			c.pinned = append(c.pinned, rec)
		}
	}
	c.mu.Unlock()

	c.log.Info("pinned", "ticker", ticker)
	c.notify()
	return nil
}

// revert clears an error state when its timer fires, unless the timer was
// superseded or the coordinator was closed in the meantime.
func (c *Coordinator) revert(ticker string, t *revertTimer) {
	c.mu.Lock()
	if c.closed || c.timers[ticker] != t {
		c.mu.Unlock()
		return
	}
	delete(c.timers, ticker)
	if c.states[ticker] == Error {
		delete(c.states, ticker)
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) stopTimerLocked(ticker string) {
	if t, ok := c.timers[ticker]; ok {
		if t.stop != nil {
			t.stop.Stop()
		}
		delete(c.timers, ticker)
	}
}

// Unpin removes ticker from the user's pinned list after the Confirmer
// agrees. A declined confirmation returns ErrDeclined and never reaches the
// gateway. Gateway failures are passed to the Alerter and leave the pinned
// collection unchanged.
func (c *Coordinator) Unpin(ctx context.Context, ticker string) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	ok, err := c.confirm.Confirm(ctx, ticker)
	if err != nil {
		return fmt.Errorf("confirm unpin %s: %w", ticker, err)
	}
	if !ok {
		return ErrDeclined
	}

	if err := c.gw.RemovePinned(ctx, ticker); err != nil {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if !closed {
			c.alert.Alert(ticker, err)
		}
		return fmt.Errorf("unpin %s: %w", ticker, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if i := indexOf(c.pinned, ticker); i >= 0 {
		c.pinned = removeAt(c.pinned, i)
	}
	c.mu.Unlock()

	c.log.Info("unpinned", "ticker", ticker)
	c.notify()
	return nil
}

// SetExplorable replaces the explorable collection after a refresh. Error
// states are cleared; pending pins keep their state.
func (c *Coordinator) SetExplorable(records []domain.StockRecord) {
	c.mu.Lock()
	c.explorable = append([]domain.StockRecord(nil), records...)
	for ticker, s := range c.states {
		if s == Error {
			delete(c.states, ticker)
			c.stopTimerLocked(ticker)
		}
	}
	c.mu.Unlock()
	c.notify()
}

// SetPinned replaces the pinned collection after a refresh.
func (c *Coordinator) SetPinned(records []domain.StockRecord) {
	c.mu.Lock()
	c.pinned = append([]domain.StockRecord(nil), records...)
	c.mu.Unlock()
	c.notify()
}

// Explorable returns a copy of the explorable collection.
func (c *Coordinator) Explorable() []domain.StockRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.StockRecord(nil), c.explorable...)
}

// Pinned returns a copy of the pinned collection.
func (c *Coordinator) Pinned() []domain.StockRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.StockRecord(nil), c.pinned...)
}

// IsPinned reports whether ticker is in the pinned collection.
func (c *Coordinator) IsPinned(ticker string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return indexOf(c.pinned, ticker) >= 0
}

// State returns the mutation state of ticker.
func (c *Coordinator) State(ticker string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[ticker]
}

// States returns a snapshot of every non-idle ticker.
func (c *Coordinator) States() map[string]State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]State, len(c.states))
	for k, v := range c.states {
		out[k] = v
	}
	return out
}

// Close stops pending reversions. Gateway calls that resolve afterwards no
// longer touch local state or fire hooks.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for ticker := range c.timers {
		c.stopTimerLocked(ticker)
	}
}

func indexOf(ss []domain.StockRecord, ticker string) int {
	for i := range ss {
		if ss[i].Ticker == ticker {
			return i
		}
	}
	return -1
}

func removeAt(ss []domain.StockRecord, i int) []domain.StockRecord {
	out := make([]domain.StockRecord, 0, len(ss)-1)
	out = append(out, ss[:i]...)
	return append(out, ss[i+1:]...)
}
