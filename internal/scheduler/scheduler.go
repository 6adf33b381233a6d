// Package scheduler runs lending cycles on a fixed interval, one at a time.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"AutoLend/internal/lending"
	"AutoLend/internal/metrics"
	"AutoLend/internal/notifier"
	"AutoLend/internal/report"
)

// Runner executes one lending cycle.
type Runner interface {
	RunCycle(ctx context.Context) (*report.Summary, error)
	Pending() *lending.PendingUnlockSet
}

// Notifier delivers cycle reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Outcome is what a tick did.
type Outcome int

const (
	Ran Outcome = iota
	Skipped
	Reset
)

func (o Outcome) String() string {
	switch o {
	case Ran:
		return "ran"
	case Skipped:
		return "skipped"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the run state.
type Status struct {
	Running      bool
	RunningSince time.Time
	LastRun      time.Time
	LastErr      error
}

// Scheduler guards the lending cycle so at most one runs at a time.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier Notifier // nil disables report delivery

	interval        time.Duration
	resetAfterCount int
	now             func() time.Time
	logger          *zap.Logger

	mu           sync.Mutex
	runningSince time.Time // zero when idle
	generation   uint64
	lastRun      time.Time
	lastErr      error
	lastReport   *report.Summary

	ctx context.Context
	wg  sync.WaitGroup
}

// NewScheduler creates a Scheduler ticking every interval. A cycle still flagged
// as running after interval*resetAfterCount is considered frozen.
func NewScheduler(runner Runner, n Notifier, interval time.Duration, resetAfterCount int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:            cron.New(),
		Runner:          runner,
		Notifier:        n,
		interval:        interval,
		resetAfterCount: resetAfterCount,
		now:             time.Now,
		logger:          logger.Named("scheduler"),
		ctx:             context.Background(),
	}
}

// Start registers the interval job, starts cron and runs one cycle right away.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx
	spec := "@every " + s.interval.String()
	if _, err := s.Cron.AddFunc(spec, func() { s.Tick(s.ctx) }); err != nil {
		return fmt.Errorf("register lending cycle: %w", err)
	}
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Tick(ctx)
	}()
	return nil
}

// Stop stops cron and waits for in-flight cycles until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.Cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running cycle: %w", ctx.Err())
	}
}

// Tick runs one cycle unless another is in flight.
func (s *Scheduler) Tick(ctx context.Context) Outcome {
	s.mu.Lock()
	now := s.now()
	if !s.runningSince.IsZero() {
		since := s.runningSince
		if now.After(since.Add(s.interval * time.Duration(s.resetAfterCount))) {
			s.runningSince = time.Time{}
			s.mu.Unlock()
			metrics.CyclesTotal.WithLabelValues(Reset.String()).Inc()
			s.logger.Warn("cycle looks frozen, resetting run flag",
				zap.Time("since", since),
				zap.Int("rounds", s.resetAfterCount),
			)
			return Reset
		}
		s.mu.Unlock()
		metrics.CyclesTotal.WithLabelValues(Skipped.String()).Inc()
		s.logger.Warn("skip tick, a cycle is already running", zap.Time("since", since))
		return Skipped
	}
	s.generation++
	gen := s.generation
	s.runningSince = now
	s.mu.Unlock()

	summary, err := s.run(ctx)

	s.mu.Lock()
	// A reset may have handed the flag to a newer cycle.
	if s.generation == gen {
		s.runningSince = time.Time{}
	}
	s.lastRun = s.now()
	s.lastErr = err
	if summary != nil {
		s.lastReport = summary
	}
	s.mu.Unlock()

	metrics.CyclesTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Error("lending cycle failed", zap.Error(err))
		return Ran
	}
	s.logger.Debug("lending cycle complete")
	s.deliver(ctx, summary)
	return Ran
}

func (s *Scheduler) run(ctx context.Context) (summary *report.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lending cycle panic: %v", r)
		}
	}()
	return s.Runner.RunCycle(ctx)
}

func (s *Scheduler) deliver(ctx context.Context, summary *report.Summary) {
	if s.Notifier == nil || summary == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, notifier.FormatReport(summary), 3); err != nil {
		s.logger.Error("send report", zap.Error(err))
	}
}

// Status returns the current run state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:      !s.runningSince.IsZero(),
		RunningSince: s.runningSince,
		LastRun:      s.lastRun,
		LastErr:      s.lastErr,
	}
}

// LastReport returns the summary of the last successful cycle, or nil.
func (s *Scheduler) LastReport() *report.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/report":
		return notifier.FormatReport(s.LastReport())
	case "/pending":
		return notifier.FormatPending(s.Runner.Pending().List())
	case "/status":
		st := s.Status()
		return notifier.FormatStatus(st.Running, st.RunningSince, st.LastRun, st.LastErr)
	default:
		return notifier.HelpText
	}
}
