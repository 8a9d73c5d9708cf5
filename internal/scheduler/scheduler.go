package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is one scheduled unit of work
type Job func(ctx context.Context) error

// Scheduler runs a job on a cron schedule. A run that is still in progress
// when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	name     string
	schedule string
	job      Job
	cron     *cron.Cron

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler for job on a standard five-field cron spec
func NewScheduler(name, schedule string, job Job) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		name:     name,
		schedule: schedule,
		job:      job,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start schedules the job. With runNow the job also runs once immediately,
// in the background, under the same overlap guard.
func (s *Scheduler) Start(ctx context.Context, runNow bool) error {
	log.Info().Str("job", s.name).Msg("Scheduler starting...")

	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	entryID, err := s.cron.AddFunc(s.schedule, s.runOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", s.name, err)
	}

	s.cron.Start()
	log.Info().
		Str("job", s.name).
		Str("schedule", s.schedule).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("Job scheduled")

	if runNow {
		// Run through the wrapped entry so it shares SkipIfStillRunning
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.cron.Entry(entryID).WrappedJob.Run()
		}()
	}

	return nil
}

// Stop stops scheduling, cancels the running job's context and waits for it
func (s *Scheduler) Stop() {
	log.Info().Str("job", s.name).Msg("Stopping scheduler...")

	stopped := s.cron.Stop()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-stopped.Done()
	s.wg.Wait()
	log.Info().Str("job", s.name).Msg("Scheduler stopped")
}

func (s *Scheduler) runOnce() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	log.Info().Str("job", s.name).Msg("Running scheduled job...")
	if err := s.job(ctx); err != nil {
		log.Error().Err(err).Str("job", s.name).Msg("Scheduled job failed")
	}
}

// cronLogger routes cron's own messages through zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
