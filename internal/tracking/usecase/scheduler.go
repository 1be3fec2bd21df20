package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/allisson/parceltrack/internal/errors"
	"github.com/allisson/parceltrack/internal/metrics"
	"github.com/allisson/parceltrack/internal/tracking/domain"
)

const (
	triggerSchedule = "schedule"
	triggerManual   = "manual"
)

// SchedulerConfig holds polling scheduler configuration.
type SchedulerConfig struct {
	Interval time.Duration
}

// PollingScheduler runs reconciliation passes on a fixed interval.
//
// A pass runs immediately on Start and then once per tick. At most one pass is in
// flight at any time: a tick that finds a pass still running is skipped. Results of
// a pass that finishes after cancellation are discarded.
type PollingScheduler struct {
	reconciler Reconciler
	config     SchedulerConfig
	metrics    metrics.TrackingMetrics
	logger     *slog.Logger

	mu        sync.Mutex
	running   bool
	runCtx    context.Context
	getBatch  BatchSource
	onResults ResultSink

	inFlight atomic.Bool
	wg       sync.WaitGroup
}

// NewPollingScheduler creates a PollingScheduler.
func NewPollingScheduler(
	reconciler Reconciler,
	config SchedulerConfig,
	trackingMetrics metrics.TrackingMetrics,
	logger *slog.Logger,
) *PollingScheduler {
	return &PollingScheduler{
		reconciler: reconciler,
		config:     config,
		metrics:    trackingMetrics,
		logger:     logger,
	}
}

// Start launches the polling loop and returns the function that stops it.
// Cancelling ctx stops the loop as well. Calling Start on a running scheduler
// returns domain.ErrSchedulerRunning.
func (s *PollingScheduler) Start(
	ctx context.Context,
	getBatch BatchSource,
	onResults ResultSink,
) (context.CancelFunc, error) {
	if s.config.Interval <= 0 {
		return nil, apperrors.Wrapf(
			apperrors.ErrInvalidInput,
			"polling interval must be positive, got %s",
			s.config.Interval,
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, domain.ErrSchedulerRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.runCtx = runCtx
	s.getBatch = getBatch
	s.onResults = onResults

	s.wg.Add(1)
	go s.loop(runCtx, getBatch, onResults)

	return cancel, nil
}

// Trigger starts an out-of-schedule pass. It returns domain.ErrPassInProgress when a
// pass is already running and domain.ErrSchedulerNotRunning when the loop is stopped.
func (s *PollingScheduler) Trigger() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.runCtx.Err() != nil {
		return domain.ErrSchedulerNotRunning
	}

	if !s.launch(s.runCtx, triggerManual, s.getBatch, s.onResults) {
		return domain.ErrPassInProgress
	}
	return nil
}

// Running reports whether the polling loop is active.
func (s *PollingScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until the loop and any in-flight pass have returned.
// It must not be called concurrently with Start.
func (s *PollingScheduler) Wait() {
	s.wg.Wait()
}

func (s *PollingScheduler) loop(ctx context.Context, getBatch BatchSource, onResults ResultSink) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.runCtx = nil
		s.mu.Unlock()
	}()

	s.logger.Info("starting tracking polling scheduler", slog.Duration("interval", s.config.Interval))

	s.launch(ctx, triggerSchedule, getBatch, onResults)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping tracking polling scheduler")
			return
		case <-ticker.C:
			s.launch(ctx, triggerSchedule, getBatch, onResults)
		}
	}
}

// launch reports whether a pass was started.
func (s *PollingScheduler) launch(
	ctx context.Context,
	trigger string,
	getBatch BatchSource,
	onResults ResultSink,
) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Info("skipping reconciliation pass, previous pass still running",
			slog.String("trigger", trigger),
		)
		s.metrics.RecordPass(ctx, trigger, metrics.PassOutcomeSkipped, 0)
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Store(false)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("reconciliation pass panicked",
					slog.String("trigger", trigger),
					slog.Any("panic", r),
				)
				s.metrics.RecordPass(context.WithoutCancel(ctx), trigger, metrics.PassOutcomeFailed, 0)
			}
		}()

		start := time.Now()
		outcome := s.runPass(ctx, trigger, getBatch, onResults)
		s.metrics.RecordPass(context.WithoutCancel(ctx), trigger, outcome, time.Since(start))
	}()

	return true
}

func (s *PollingScheduler) runPass(
	ctx context.Context,
	trigger string,
	getBatch BatchSource,
	onResults ResultSink,
) string {
	refs, err := getBatch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return metrics.PassOutcomeDiscarded
		}
		s.logger.Error("failed to load tracked orders", slog.String("trigger", trigger), slog.Any("error", err))
		return metrics.PassOutcomeFailed
	}

	changes, err := s.reconciler.Reconcile(ctx, refs)
	if err != nil {
		if ctx.Err() != nil {
			return metrics.PassOutcomeDiscarded
		}
		s.logger.Error("reconciliation failed", slog.String("trigger", trigger), slog.Any("error", err))
		return metrics.PassOutcomeFailed
	}

	if ctx.Err() != nil {
		s.logger.Info("discarding results of cancelled reconciliation pass",
			slog.String("trigger", trigger),
			slog.Int("changes", len(changes)),
		)
		return metrics.PassOutcomeDiscarded
	}

	if len(changes) == 0 {
		return metrics.PassOutcomeCompleted
	}

	if err := onResults(ctx, changes); err != nil {
		s.logger.Error("failed to apply status changes",
			slog.String("trigger", trigger),
			slog.Int("changes", len(changes)),
			slog.Any("error", err),
		)
		return metrics.PassOutcomeFailed
	}

	return metrics.PassOutcomeCompleted
}
