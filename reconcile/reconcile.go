// Package reconcile converts a backend run's nested step/log structure into
// flat, display-ready state by polling run snapshots until the run reaches a
// terminal status. Polling is strictly sequential per watch: the next fetch
// is only issued after the previous snapshot has been folded in. Switching
// to a different run cancels the old watch, and a snapshot that arrives late
// from a superseded watch is discarded rather than applied out of order.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shipsec/reconcraft/client"
)

// DefaultInterval is the poll interval between run snapshot fetches.
const DefaultInterval = 2 * time.Second

// RunFetcher supplies run snapshots. *client.Client satisfies it. Retry and
// backoff of failed fetches belong to the fetch layer, not the reconciler.
type RunFetcher interface {
	GetRun(ctx context.Context, id string) (*client.Run, error)
}

// Notifier receives exactly one terminal notification per watched run.
type Notifier interface {
	RunSucceeded(runID string)
	RunFailed(runID string)
}

// LogNotifier is a Notifier that writes to a slog logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) RunSucceeded(runID string) {
	n.Logger.Info("workflow run completed successfully", "run_id", runID)
}

func (n LogNotifier) RunFailed(runID string) {
	n.Logger.Error("workflow run failed", "run_id", runID)
}

// State is the reconciler's accumulated view of the watched run. Logs is
// the presentation-only flattening of all step logs in step order then
// per-step log order; the authoritative per-step structure stays on Run.
type State struct {
	RunID    string
	Run      *client.Run
	Logs     []string
	Terminal bool
}

// Reconciler watches one run at a time. Safe for concurrent use.
type Reconciler struct {
	fetcher  RunFetcher
	notifier Notifier
	interval time.Duration
	logger   *slog.Logger
	onUpdate func(State)

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	state      State
	notified   bool
	wg         sync.WaitGroup
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) { r.interval = d }
}

// WithLogger sets the reconciler's logger.
func WithLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.logger = l }
}

// WithOnUpdate registers a callback invoked after every applied snapshot,
// used by display surfaces to re-render.
func WithOnUpdate(fn func(State)) ReconcilerOption {
	return func(r *Reconciler) { r.onUpdate = fn }
}

// New creates a Reconciler polling fetcher and reporting terminal
// transitions to notifier.
func New(fetcher RunFetcher, notifier Notifier, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		fetcher:  fetcher,
		notifier: notifier,
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Watch starts polling runID. Any previous watch is cancelled first; its
// in-flight snapshot, if one arrives afterwards, is discarded. Watch
// returns immediately; polling happens in the background until the run is
// terminal, ctx is done, or Stop is called.
func (r *Reconciler) Watch(ctx context.Context, runID string) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.generation++
	gen := r.generation
	watchCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.state = State{RunID: runID}
	r.notified = false
	r.mu.Unlock()

	r.wg.Add(1)
	go r.loop(watchCtx, gen, runID)
}

// Stop cancels the current watch, releasing its poll timer immediately.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
}

// Wait blocks until all watch goroutines have exited. Intended for
// command-style callers that watch a single run to completion.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

// State returns a copy of the current accumulated view.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state
	s.Logs = append([]string(nil), r.state.Logs...)
	return s
}

func (r *Reconciler) loop(ctx context.Context, gen uint64, runID string) {
	defer r.wg.Done()

	for {
		run, err := r.fetcher.GetRun(ctx, runID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			// The fetch layer owns retries; just wait for the next tick.
			r.logger.Warn("run snapshot fetch failed", "run_id", runID, "err", err)
		} else if terminal := r.apply(gen, runID, run); terminal {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.interval):
		}
	}
}

// apply folds a snapshot into the state. It reports whether the run is
// terminal (and polling should stop). Snapshots from a superseded watch
// generation are discarded.
func (r *Reconciler) apply(gen uint64, runID string, run *client.Run) bool {
	var (
		notify   Notifier
		status   client.RunStatus
		onUpdate func(State)
		snapshot State
	)

	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		r.logger.Debug("discarding stale run snapshot", "run_id", runID)
		return true
	}

	r.state.Run = run
	r.state.Logs = FlattenLogs(run.Steps)
	r.state.Terminal = run.Status.Terminal()

	if r.state.Terminal && !r.notified {
		r.notified = true
		notify = r.notifier
		status = run.Status
	}
	terminal := r.state.Terminal
	onUpdate = r.onUpdate
	snapshot = r.state
	snapshot.Logs = append([]string(nil), r.state.Logs...)
	r.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}
	if notify != nil {
		switch status {
		case client.RunSucceeded:
			notify.RunSucceeded(runID)
		case client.RunFailed:
			notify.RunFailed(runID)
		}
	}
	return terminal
}

// FlattenLogs merges all step log sequences into one linear sequence,
// preserving step order and intra-step order.
func FlattenLogs(steps []client.RunStep) []string {
	var out []string
	for _, step := range steps {
		out = append(out, step.Logs...)
	}
	return out
}
