// Package scheduler runs the app's background jobs on cron schedules,
// currently the periodic market quote refresh.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of background work. Run must be safe to invoke repeatedly;
// overlapping schedules are not coalesced.
type Job interface {
	Run() error
	Name() string
}

// Scheduler wraps a cron runner with job-scoped logging.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a stopped scheduler.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop halts scheduling and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job with a cron schedule such as "@every 5m" or a
// six-field cron expression. Job failures are logged, never fatal: a missed
// quote refresh just means the cache serves stale prices until the next run.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
			return
		}

		s.log.Debug().Str("job", job.Name()).Msg("Job completed")
	})

	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}
