// Package connectivity tracks whether the Authentication Service is
// reachable and fires callbacks when connectivity comes back.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/client/metrics"
	"github.com/dmitrijs2005/siteauth/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

const defaultPingTimeout = 3 * time.Second

// Pinger probes the service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Watcher pings on a fixed interval and records online/offline
// transitions. Going from offline back to online runs the OnRestored
// callbacks, in registration order, on the watcher goroutine.
type Watcher struct {
	pinger      Pinger
	interval    time.Duration
	pingTimeout time.Duration
	logger      logging.Logger
	metrics     *metrics.Metrics

	mu         sync.RWMutex
	mode       Mode
	onRestored []func(ctx context.Context)
	onChange   []func(Mode)
}

type Option func(*Watcher)

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Watcher) { w.metrics = m }
}

func WithPingTimeout(d time.Duration) Option {
	return func(w *Watcher) { w.pingTimeout = d }
}

func NewWatcher(p Pinger, interval time.Duration, logger logging.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		pinger:      p,
		interval:    interval,
		pingTimeout: defaultPingTimeout,
		logger:      logger.With("component", "connectivity"),
		mode:        ModeUnknown,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// OnRestored registers fn to run on every offline to online transition.
func (w *Watcher) OnRestored(fn func(ctx context.Context)) {
	w.mu.Lock()
	w.onRestored = append(w.onRestored, fn)
	w.mu.Unlock()
}

// OnChange registers fn to run on every mode change, including the first
// probe result.
func (w *Watcher) OnChange(fn func(Mode)) {
	w.mu.Lock()
	w.onChange = append(w.onChange, fn)
	w.mu.Unlock()
}

func (w *Watcher) Mode() Mode {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mode
}

// Check runs one probe and applies the resulting transition.
func (w *Watcher) Check(ctx context.Context) Mode {
	pingCtx, cancel := context.WithTimeout(ctx, w.pingTimeout)
	err := w.pinger.Ping(pingCtx)
	cancel()

	next := ModeOnline
	if err != nil {
		next = ModeOffline
	}

	w.mu.Lock()
	prev := w.mode
	w.mode = next
	restored := append([]func(context.Context){}, w.onRestored...)
	changed := append([]func(Mode){}, w.onChange...)
	w.mu.Unlock()

	if prev == next {
		return next
	}

	if next == ModeOffline {
		w.logger.Warn(ctx, "server unreachable, switched to offline mode", "error", err)
	} else {
		w.logger.Info(ctx, "switched to online mode")
	}
	if w.metrics != nil {
		w.metrics.ConnectivityChanges.WithLabelValues(string(next)).Inc()
	}
	for _, fn := range changed {
		fn(next)
	}
	if prev == ModeOffline && next == ModeOnline {
		for _, fn := range restored {
			fn(ctx)
		}
	}
	return next
}

// Run probes immediately and then every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.Check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}
