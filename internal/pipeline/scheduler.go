package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abelbrown/watchfloor/internal/logging"
)

// runner is the part of Pipeline the scheduler drives.
type runner interface {
	Run(ctx context.Context) (Report, error)
}

// Scheduler runs a pipeline on a standard five-field cron expression.
// Runs never overlap; a tick that fires while a run is active is skipped.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	r        runner
	running  sync.Mutex
	ctx      context.Context
}

// NewScheduler parses spec and prepares a Scheduler. Nothing runs until
// Start.
func NewScheduler(r runner, spec string) (*Scheduler, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	s := &Scheduler{cron: cron.New(), schedule: sched, r: r, ctx: context.Background()}
	s.cron.Schedule(sched, cron.FuncJob(s.tick))
	return s, nil
}

// Start runs the pipeline once immediately, then on schedule until ctx
// is cancelled. It blocks until the scheduler has stopped and any
// in-flight run has finished.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.tick()
	s.cron.Start()
	logging.Info("scheduler started", "next", s.Next(time.Now()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	logging.Info("scheduler stopped")
}

// Next returns the first scheduled run after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s *Scheduler) tick() {
	if !s.running.TryLock() {
		logging.Warn("previous run still active, skipping tick")
		return
	}
	defer s.running.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	if _, err := s.r.Run(s.ctx); err != nil {
		logging.Error("pipeline run failed", "error", err)
	}
}
