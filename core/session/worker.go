package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/sessiontimeout/core/logger"
)

// DefaultSweepInterval is used when a SweepWorker is created without an interval.
const DefaultSweepInterval = 5 * time.Minute

// Sweepable is anything that can run a sweep pass. Both Sweeper and Manager satisfy it.
type Sweepable interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

// Sweep lets Manager be driven by a SweepWorker.
func (m *Manager) Sweep(ctx context.Context) (SweepResult, error) {
	return m.Expire(ctx)
}

// SweepWorker runs sweeps periodically until stopped.
type SweepWorker struct {
	sweeper     Sweepable
	interval    time.Duration
	runOnStart  bool
	logger      *slog.Logger
	onSweepDone func(SweepResult, error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	runs     atomic.Int64
	failures atomic.Int64
	removed  atomic.Int64
}

// SweepWorkerStats provides counters for monitoring.
type SweepWorkerStats struct {
	Runs      int64
	Failures  int64
	Removed   int64
	IsRunning bool
}

// SweepWorkerOption configures a SweepWorker.
type SweepWorkerOption func(*SweepWorker)

// WithSweepInterval sets the time between sweeps.
func WithSweepInterval(d time.Duration) SweepWorkerOption {
	return func(w *SweepWorker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithRunOnStart makes the worker sweep immediately instead of waiting one interval.
func WithRunOnStart(enabled bool) SweepWorkerOption {
	return func(w *SweepWorker) { w.runOnStart = enabled }
}

// WithWorkerLogger sets the logger.
func WithWorkerLogger(l *slog.Logger) SweepWorkerOption {
	return func(w *SweepWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithSweepCallback registers fn to be called after every sweep.
func WithSweepCallback(fn func(SweepResult, error)) SweepWorkerOption {
	return func(w *SweepWorker) { w.onSweepDone = fn }
}

// NewSweepWorker creates a worker around s.
func NewSweepWorker(s Sweepable, opts ...SweepWorkerOption) *SweepWorker {
	w := &SweepWorker{
		sweeper:  s,
		interval: DefaultSweepInterval,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs sweeps until ctx is cancelled or Stop is called. It blocks.
// Sweep errors are logged; the worker keeps going.
func (w *SweepWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrWorkerStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	defer func() {
		cancel()
		close(done)
		w.mu.Lock()
		w.cancel = nil
		w.mu.Unlock()
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "sweep worker started",
		logger.Component("session"),
		slog.Duration("interval", w.interval))

	if w.runOnStart {
		w.runOnce(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(context.Background(), "sweep worker stopped",
				logger.Component("session"))
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// Stop ends a running Start call and waits for the current sweep to finish.
func (w *SweepWorker) Stop() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return ErrWorkerNotStarted
	}
	cancel()
	<-done
	return nil
}

// Stats returns the worker counters.
func (w *SweepWorker) Stats() SweepWorkerStats {
	w.mu.Lock()
	running := w.cancel != nil
	w.mu.Unlock()

	return SweepWorkerStats{
		Runs:      w.runs.Load(),
		Failures:  w.failures.Load(),
		Removed:   w.removed.Load(),
		IsRunning: running,
	}
}

func (w *SweepWorker) runOnce(ctx context.Context) {
	res, err := w.sweeper.Sweep(ctx)
	w.runs.Add(1)
	w.removed.Add(int64(res.Removed))
	if err != nil && ctx.Err() == nil {
		w.failures.Add(1)
		w.logger.ErrorContext(ctx, "session sweep failed",
			logger.Component("session"),
			logger.Error(err))
	}
	if w.onSweepDone != nil {
		w.onSweepDone(res, err)
	}
}
