package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/pkg/config"
	"github.com/wonny/copa/pkg/logger"
)

// Triggers recorded in the run audit entry.
const (
	TriggerAutomatic = "automatic"
	TriggerManual    = "manual"
)

// ErrRunInProgress is returned when a run is requested while another is
// still executing. Runs are skipped, never queued.
var ErrRunInProgress = errors.New("a transition run is already executing")

// TransitionScheduler runs the automatic period transition on a daily
// timer. One logical instance per deployment: the in-process overlap
// guard does not protect against a second configured instance.
type TransitionScheduler struct {
	transitioner *Transitioner
	audit        contracts.AuditSink
	clock        contracts.Clock
	logger       *logger.Logger

	cfg config.SchedulerConfig

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	cancel  context.CancelFunc
	runCtx  context.Context

	running atomic.Bool
}

// New creates a transition scheduler. Start must be called to begin
// scheduling.
func New(transitioner *Transitioner, audit contracts.AuditSink, cfg config.SchedulerConfig, clock contracts.Clock, log *logger.Logger) *TransitionScheduler {
	return &TransitionScheduler{
		transitioner: transitioner,
		audit:        audit,
		clock:        clock,
		logger:       log,
		cfg:          cfg,
	}
}

// cronSpec converts an "HH:MM" time of day into a seconds-resolution
// cron expression firing once a day.
func cronSpec(timeOfDay string) (string, error) {
	t, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return "", fmt.Errorf("invalid transition time %q: %w", timeOfDay, err)
	}
	return fmt.Sprintf("0 %d %d * * *", t.Minute(), t.Hour()), nil
}

// Start begins the daily schedule. Idempotent: calling Start while
// already scheduled logs a warning and does nothing.
func (s *TransitionScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		s.logger.Warn("Scheduler start requested but it is already running")
		return nil
	}

	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", s.cfg.Timezone, err)
	}

	spec, err := cronSpec(s.cfg.TransitionTime)
	if err != nil {
		return err
	}

	s.runCtx, s.cancel = context.WithCancel(context.Background())

	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
	entryID, err := c.AddFunc(spec, func() {
		if err := s.execute(s.runCtx, TriggerAutomatic, contracts.System); err != nil && !errors.Is(err, ErrRunInProgress) {
			s.logger.WithError(err).Error("Scheduled transition run failed")
		}
	})
	if err != nil {
		s.cancel()
		return fmt.Errorf("schedule transition job: %w", err)
	}

	c.Start()
	s.cron = c
	s.entryID = entryID

	s.logger.WithFields(map[string]interface{}{
		"time":     s.cfg.TransitionTime,
		"timezone": s.cfg.Timezone,
	}).Info("Transition scheduler started")

	return nil
}

// Stop cancels scheduling and any retry delay in progress. Idempotent.
func (s *TransitionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}

	s.cancel()
	<-s.cron.Stop().Done()
	s.cron = nil

	s.logger.Info("Transition scheduler stopped")
}

// Status describes the scheduler for operators.
type Status struct {
	Active         bool       `json:"active"`
	RunInProgress  bool       `json:"run_in_progress"`
	NextRun        *time.Time `json:"next_run,omitempty"`
	TransitionTime string     `json:"transition_time"`
	Timezone       string     `json:"timezone"`
}

// Status reports whether the scheduler is active, whether a run is
// executing right now and when the next scheduled run fires.
func (s *TransitionScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Active:         s.cron != nil,
		RunInProgress:  s.running.Load(),
		TransitionTime: s.cfg.TransitionTime,
		Timezone:       s.cfg.Timezone,
	}
	if s.cron != nil {
		next := s.cron.Entry(s.entryID).Next
		if !next.IsZero() {
			status.NextRun = &next
		}
	}
	return status
}

// RunOnce triggers a transition run immediately, bypassing the timer.
// It is subject to the same overlap guard as scheduled runs.
func (s *TransitionScheduler) RunOnce(ctx context.Context, actor contracts.Principal) error {
	return s.execute(ctx, TriggerManual, actor)
}

// execute performs one guarded, retried transition run and records the
// audit entry. Only infrastructure failures from the transitioner are
// retried; per-period errors complete the run with an error list.
func (s *TransitionScheduler) execute(ctx context.Context, trigger string, actor contracts.Principal) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.WithField("trigger", trigger).Warn("Transition run skipped, previous run still executing")
		return ErrRunInProgress
	}
	defer s.running.Store(false)

	start := s.clock.Now()
	s.logger.WithField("trigger", trigger).Info("Transition run started")

	var report *RunReport
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		attempts = attempt
		report, lastErr = s.transitioner.Run(ctx)
		if lastErr == nil {
			break
		}

		s.logger.WithFields(map[string]interface{}{
			"attempt": attempt,
			"error":   lastErr.Error(),
		}).Warn("Transition attempt failed")

		if attempt == s.cfg.MaxRetries {
			break
		}

		// Linear backoff: attempt x base delay, abandoned on shutdown.
		select {
		case <-ctx.Done():
			lastErr = fmt.Errorf("transition run cancelled: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * s.cfg.RetryDelay):
		}
		if ctx.Err() != nil {
			break
		}
	}

	record := &contracts.TransitionRunRecord{
		RunAt:       start,
		Trigger:     trigger,
		TriggeredBy: actor.ID,
		Attempts:    attempts,
		Elapsed:     s.clock.Now().Sub(start),
		Success:     lastErr == nil,
		Errors:      []string{},
	}
	if report != nil {
		record.PeriodsPreClosed = report.PeriodsPreClosed
		record.SuccessorsCreated = report.SuccessorsCreated
		record.Errors = report.Errors
	}
	if lastErr != nil {
		record.LastError = lastErr.Error()
	}

	if err := s.audit.RecordTransitionRun(ctx, record); err != nil {
		s.logger.WithError(err).Error("Transition run audit write failed")
	}

	if lastErr != nil {
		s.logger.WithFields(map[string]interface{}{
			"attempts": attempts,
			"elapsed":  record.Elapsed,
			"error":    lastErr.Error(),
		}).Error("Transition run failed after all attempts")
		return lastErr
	}

	s.logger.WithFields(map[string]interface{}{
		"pre_closed": record.PeriodsPreClosed,
		"created":    record.SuccessorsCreated,
		"errors":     len(record.Errors),
		"attempts":   attempts,
		"elapsed":    record.Elapsed,
	}).Info("Transition run completed")

	return nil
}
