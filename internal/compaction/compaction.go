// Package compaction implements the compaction control plane of §4.7: it
// tracks half-open time windows of uncompacted writes, a registry of
// writers that must acknowledge a window before it dispatches, and a
// health function operators can poll to see whether compaction is
// keeping up.
package compaction

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/parquedb/parquedb/pkg/errors"
	"github.com/parquedb/parquedb/pkg/options"
)

// State is a window's position in the pending -> dispatched ->
// processing -> stuck/complete state machine §4.7 describes.
type State int

const (
	StatePending State = iota
	StateDispatched
	StateProcessing
	StateStuck
	StateComplete
)

// Window is one half-open interval of writes awaiting compaction.
type Window struct {
	Namespace   string
	Start       time.Time
	End         time.Time
	State       State
	Acked       map[string]bool // writerID -> acknowledged
	DispatchedAt time.Time

	payload []byte // uncompressed entries accumulated for this window
}

// Health summarizes a namespace's compaction backlog.
type Health string

const (
	HealthHealthy   Health = "healthy"
	HealthDegraded  Health = "degraded"
	HealthUnhealthy Health = "unhealthy"
)

// Compaction coordinates windows and writer acknowledgements for a single
// engine instance, covering every namespace it sees.
type Compaction struct {
	log    *zap.SugaredLogger
	opts   *options.CompactionOptions
	closed atomic.Bool

	mu       sync.Mutex
	windows  map[string][]*Window // namespace -> windows, oldest first
	writers  map[string]time.Time // writerID -> last heartbeat
}

// Config holds the parameters New needs to build a Compaction.
type Config struct {
	Logger  *zap.SugaredLogger
	Options *options.CompactionOptions
}

// New builds a Compaction control plane from config. A nil
// config.Options falls back to the package default thresholds.
func New(config *Config) *Compaction {
	opts := options.NewDefaultOptions().CompactionOptions
	if config != nil && config.Options != nil {
		opts = config.Options
	}

	var log *zap.SugaredLogger
	if config != nil {
		log = config.Logger
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Compaction{
		log:     log,
		opts:    opts,
		windows: make(map[string][]*Window),
		writers: make(map[string]time.Time),
	}
}

// OpenWindow returns the current pending window for namespace, creating
// one starting at now if the most recent window has already closed
// (its End has passed) or none exists yet.
func (c *Compaction) OpenWindow(namespace string, now time.Time) *Window {
	c.mu.Lock()
	defer c.mu.Unlock()

	windows := c.windows[namespace]
	if len(windows) > 0 {
		last := windows[len(windows)-1]
		if last.State == StatePending && now.Before(last.End) {
			return last
		}
	}

	w := &Window{
		Namespace: namespace,
		Start:     now,
		End:       now.Add(c.opts.WindowSize),
		State:     StatePending,
		Acked:     make(map[string]bool),
	}
	c.windows[namespace] = append(windows, w)
	return w
}

// Append adds entries to the current pending window for namespace.
func (c *Compaction) Append(namespace string, now time.Time, data []byte) {
	w := c.OpenWindow(namespace, now)
	c.mu.Lock()
	w.payload = append(w.payload, data...)
	c.mu.Unlock()
}

// RegisterWriter records a heartbeat for writerID, extending its
// liveness for StuckTimeout-scale bookkeeping.
func (c *Compaction) RegisterWriter(writerID string, now time.Time) {
	c.mu.Lock()
	c.writers[writerID] = now
	c.mu.Unlock()
}

// AckWindow records writerID's acknowledgement of the window starting at
// windowStart. It does not dispatch the window itself; Dispatch checks the
// recorded acknowledgements.
func (c *Compaction) AckWindow(namespace string, windowStart time.Time, writerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := c.findWindow(namespace, windowStart)
	if w == nil {
		return
	}
	w.Acked[writerID] = true
}

// Dispatch transitions namespace's oldest pending window to dispatched,
// compressing its accumulated payload with zstd, once either every
// registered writer has acknowledged it or MaxWait has elapsed since the
// window closed. Returns nil if no window is eligible yet.
func (c *Compaction) Dispatch(namespace string, now time.Time) *Window {
	c.mu.Lock()
	defer c.mu.Unlock()

	windows := c.windows[namespace]
	for _, w := range windows {
		if w.State != StatePending {
			continue
		}
		if now.Before(w.End) {
			continue
		}
		if !c.allAcked(w) && now.Sub(w.End) < c.opts.MaxWait {
			continue
		}

		w.payload = compressSegment(w.payload)
		w.State = StateDispatched
		w.DispatchedAt = now
		return w
	}
	return nil
}

func (c *Compaction) allAcked(w *Window) bool {
	if len(c.writers) == 0 {
		return true
	}
	for writerID := range c.writers {
		if !w.Acked[writerID] {
			return false
		}
	}
	return true
}

// MarkProcessing transitions a dispatched window to processing.
func (c *Compaction) MarkProcessing(namespace string, windowStart time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.findWindow(namespace, windowStart); w != nil && w.State == StateDispatched {
		w.State = StateProcessing
	}
}

// MarkComplete transitions a processing window to complete.
func (c *Compaction) MarkComplete(namespace string, windowStart time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.findWindow(namespace, windowStart); w != nil {
		w.State = StateComplete
	}
}

// DetectStuck scans dispatched/processing windows for namespace and
// marks any that have exceeded StuckTimeout since dispatch as stuck,
// returning the ones it transitioned.
func (c *Compaction) DetectStuck(namespace string, now time.Time) []*Window {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stuck []*Window
	for _, w := range c.windows[namespace] {
		if w.State != StateDispatched && w.State != StateProcessing {
			continue
		}
		if now.Sub(w.DispatchedAt) > c.opts.StuckTimeout {
			w.State = StateStuck
			stuck = append(stuck, w)
		}
	}
	return stuck
}

// AdministrativeReset forcibly returns a stuck window to pending,
// clearing its acknowledgements and extending its deadline from now -
// an operator escape hatch for a window whose writers can't be revived.
func (c *Compaction) AdministrativeReset(namespace string, windowStart time.Time, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := c.findWindow(namespace, windowStart)
	if w == nil {
		return errors.NewNotFoundError(namespace)
	}
	if w.State != StateStuck {
		return errors.NewWindowStuckError(namespace, windowStart.Unix()).
			WithDetail("currentState", w.State).
			WithDetail("reason", "administrative reset only applies to stuck windows")
	}

	w.State = StatePending
	w.Acked = make(map[string]bool)
	w.End = now.Add(c.opts.WindowSize)
	w.DispatchedAt = time.Time{}

	c.log.Infow("compaction window administratively reset",
		"namespace", namespace, "windowStart", windowStart)
	return nil
}

func (c *Compaction) findWindow(namespace string, start time.Time) *Window {
	for _, w := range c.windows[namespace] {
		if w.Start.Equal(start) {
			return w
		}
	}
	return nil
}

// Health evaluates namespace's backlog against the configured
// thresholds, short-circuiting at the first threshold crossed in
// descending severity (unhealthy, then degraded) so a namespace already
// unhealthy doesn't pay the cost of the lighter check too.
func (c *Compaction) Health(namespace string, now time.Time) Health {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := 0
	stuck := 0
	var oldestStart time.Time
	hasOldest := false

	for _, w := range c.windows[namespace] {
		if w.State == StateStuck {
			stuck++
			continue
		}
		if w.State != StatePending && w.State != StateDispatched && w.State != StateProcessing {
			continue
		}
		pending++
		if !hasOldest || w.Start.Before(oldestStart) {
			oldestStart = w.Start
			hasOldest = true
		}
	}

	oldestAge := time.Duration(0)
	if hasOldest {
		oldestAge = now.Sub(oldestStart)
	}

	if stuck > 0 {
		return HealthUnhealthy
	}
	if pending >= c.opts.PendingWindowsUnhealthy || oldestAge >= c.opts.OldestWindowAgeUnhealthy {
		return HealthUnhealthy
	}
	if pending >= c.opts.PendingWindowsDegraded || oldestAge >= c.opts.OldestWindowAgeDegraded {
		return HealthDegraded
	}
	return HealthHealthy
}

// Close marks the control plane closed. Safe to call once; a second call
// returns errAlreadyClosed.
func (c *Compaction) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return errAlreadyClosed
	}
	return nil
}
