// Package refresh re-runs list fetches on a cron schedule, keeping the caches of a long running
// process current.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New validates spec and returns a stopped scheduler. Each run of the jobs is bounded by timeout.
func New(spec string, timeout time.Duration, jobs ...Job) (*Scheduler, error) {
	s := &Scheduler{
		// A run still in progress when the next one is due is skipped.
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:    jobs,
		timeout: timeout,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}
	if err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("scheduled refresh failed")
	}
}

// RunOnce runs every job in order and returns their joined errors. A failing job does not stop the
// ones after it.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var errs []error
	for _, j := range s.jobs {
		start := time.Now()
		err := j.Run(ctx)
		e := log.Debug()
		if err != nil {
			e = log.Warn().Err(err)
			errs = append(errs, err)
		}
		e.Str("job", j.Name).Dur("took", time.Since(start)).Msg("refresh")
	}
	return errors.Join(errs...)
}

// Start schedules the jobs until ctx ends or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	log.Info().Int("jobs", len(s.jobs)).Msg("refresh scheduler started")
}

// Stop cancels the running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	log.Info().Msg("refresh scheduler stopped")
}
