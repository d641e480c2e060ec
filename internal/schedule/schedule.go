// Package schedule runs the periodic feed import and page capture.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"apptcal/internal/capture"
	"apptcal/internal/ics"
	appLog "apptcal/internal/log"
)

// JobFunc is one scheduled unit of work.
type JobFunc func(ctx context.Context) error

// Scheduler wraps a cron runner whose jobs share the context given to Run.
type Scheduler struct {
	c   *cron.Cron
	ctx context.Context
}

// New returns a scheduler evaluating specs in loc. Panicking jobs are
// recovered and a job still running at its next tick is skipped.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	l := cronLogger{}
	return &Scheduler{
		c: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		ctx: context.Background(),
	}
}

// Add registers job under a standard five-field cron spec or a descriptor
// such as "@hourly".
func (s *Scheduler) Add(name, spec string, job JobFunc) error {
	_, err := s.c.AddFunc(spec, func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			appLog.Error("scheduled job failed", err, "job", name)
			return
		}
		appLog.Debug("scheduled job done", "job", name, "elapsed", time.Since(start).String())
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	appLog.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int { return len(s.c.Entries()) }

// Run starts the jobs and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	s.c.Start()
	<-ctx.Done()
	<-s.c.Stop().Done()
	appLog.Info("scheduler stopped")
}

// ImportJob re-imports the configured feeds into dst.
func ImportJob(im *ics.Importer, dst ics.Inserter) JobFunc {
	return func(ctx context.Context) error {
		rep, err := im.Run(ctx, dst)
		appLog.Info("feed import finished", "imported", rep.Imported, "skipped", rep.Skipped)
		return err
	}
}

// CaptureJob screenshots the month page.
func CaptureJob(opts capture.Options) JobFunc {
	return func(ctx context.Context) error {
		return capture.MonthPNG(ctx, opts)
	}
}

// cronLogger routes the cron library's logging into internal/log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
