package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"ventanita/internal/logger"
	"ventanita/internal/metrics"
)

// ─────────────────────────────────────────────────────────────
// Scheduler: publishes revisions whose go-live time has passed
// ─────────────────────────────────────────────────────────────

const publishJobID = "publish-scheduled"

type Scheduler struct {
	pages   *PageService
	metrics *metrics.Collector
	log     *logger.Logger
	runs    runGuard

	cronSched *cron.Cron
}

func NewScheduler(pages *PageService, m *metrics.Collector, log *logger.Logger) *Scheduler {
	return &Scheduler{pages: pages, metrics: m, log: log}
}

// Start runs RunOnce on the cron spec (e.g. "@every 1m").
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	s.Stop()
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Error("scheduled publishing failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	c.Start()
	s.cronSched = c
	s.log.Info("scheduler started", "spec", spec)
	return nil
}

// RunOnce publishes everything that is due. It returns 0 without doing
// anything when a run is already in progress.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	if ok, since := s.runs.Begin(publishJobID); !ok {
		s.log.Debug("scheduled publishing already running", "since", since)
		return 0, nil
	}
	defer s.runs.End(publishJobID)

	s.metrics.ScheduledRun()
	n, err := s.pages.PublishScheduled(ctx)
	if n > 0 {
		s.log.Info("scheduled pages published", "count", n)
	}
	return n, err
}

// WaitRunning blocks until a running publish finishes or ctx is cancelled.
// Used for graceful shutdown.
func (s *Scheduler) WaitRunning(ctx context.Context) {
	s.runs.Wait(ctx)
}

// Stop halts the cron schedule. It is safe to call more than once.
func (s *Scheduler) Stop() {
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
