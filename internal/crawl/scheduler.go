package crawl

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chek-app/crawler/internal/model"
)

// Scheduler wires the Runner to a cron cadence and retains the last run
// summary for the health endpoint. A failed or panicking scheduled run
// is logged and the schedule continues.
type Scheduler struct {
	runner *Runner
	cron   *cron.Cron

	mu   sync.RWMutex
	last *model.RunSummary
}

// NewScheduler creates a Scheduler over the runner.
func NewScheduler(r *Runner) *Scheduler {
	return &Scheduler{runner: r}
}

// RunNow executes one run synchronously and records its summary. Run
// errors are contained here; callers use the summary.
func (s *Scheduler) RunNow(ctx context.Context) model.RunSummary {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("run_panic", zap.Any("panic", rec))
		}
	}()

	summary, err := s.runner.Run(ctx)
	if err != nil {
		zap.L().Error("run_failed", zap.String("runId", summary.RunID), zap.Error(err))
	}

	s.mu.Lock()
	s.last = &summary
	s.mu.Unlock()
	return summary
}

// Start registers the cron entry and begins the schedule. The returned
// error covers only spec parsing; runs themselves never stop the cron.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.RunNow(ctx) }); err != nil {
		return eris.Wrapf(err, "crawl: cron spec %q", spec)
	}
	c.Start()
	s.cron = c
	zap.L().Info("scheduler_started", zap.String("cron", spec))
	return nil
}

// Stop halts the cron schedule, waiting for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// LastRun returns the most recent run summary, or nil before the first
// run completes.
func (s *Scheduler) LastRun() *model.RunSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	cp := *s.last
	return &cp
}
