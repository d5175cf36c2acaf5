// Package scheduler runs report generation on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs a single job on a cron schedule. A run that is still in
// progress when the next one is due causes that next run to be skipped.
type Scheduler struct {
	cron    *cron.Cron
	entry   cron.EntryID
	spec    string
	logger  logrus.FieldLogger
	timeout time.Duration
}

// New schedules job according to spec, a standard five-field cron
// expression or a descriptor such as "@hourly". Each run gets a context
// bounded by timeout, or no deadline when timeout is zero.
func New(spec string, timeout time.Duration, logger logrus.FieldLogger, job func(ctx context.Context)) (*Scheduler, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Scheduler{
		spec:    spec,
		logger:  logger.WithField("schedule", spec),
		timeout: timeout,
	}
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(s.logger)),
		cron.SkipIfStillRunning(cron.PrintfLogger(s.logger)),
	))

	id, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		start := time.Now()
		s.logger.Info("Running scheduled report")
		job(ctx)
		s.logger.WithField("duration", time.Since(start).Round(time.Millisecond)).Info("Scheduled report finished")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// Next returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	s.logger.WithField("next", s.Next().Format(time.RFC3339)).Info("Scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}
