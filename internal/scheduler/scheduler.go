package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"affordability-assessment/internal/logger"
)

// FileSweeper removes generated report files past their age limit.
type FileSweeper interface {
	CleanupOlderThan(d time.Duration) (int, error)
}

// ReportIndex drops report ids whose status has expired.
type ReportIndex interface {
	PruneIndex(ctx context.Context) (int, error)
}

// Scheduler runs the periodic housekeeping jobs.
type Scheduler struct {
	cron    *cron.Cron
	files   FileSweeper
	reports ReportIndex
	maxAge  time.Duration
}

// New registers the cleanup job on spec, which accepts standard five-field cron
// expressions and descriptors such as "@every 5m". Either dependency may be nil.
func New(spec string, maxAge time.Duration, files FileSweeper, reports ReportIndex) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		files:   files,
		reports: reports,
		maxAge:  maxAge,
	}

	if _, err := s.cron.AddFunc(spec, func() { s.RunCleanup(context.Background()) }); err != nil {
		return nil, fmt.Errorf("register cleanup job %q: %w", spec, err)
	}
	return s, nil
}

// RunCleanup performs one housekeeping pass. Failures are logged, not returned.
func (s *Scheduler) RunCleanup(ctx context.Context) {
	if s.files != nil {
		n, err := s.files.CleanupOlderThan(s.maxAge)
		if err != nil {
			logger.Errorf("[REPORT] storage cleanup: %v", err)
		} else if n > 0 {
			logger.Infof("[REPORT] removed %d expired report files", n)
		}
	}

	if s.reports != nil {
		n, err := s.reports.PruneIndex(ctx)
		if err != nil {
			logger.Errorf("[REPORT] prune report index: %v", err)
		} else if n > 0 {
			logger.Infof("[REPORT] pruned %d expired report ids", n)
		}
	}
}

func (s *Scheduler) Start() {
	logger.Infof("starting scheduler with %d jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Infof("scheduler stopped")
}
