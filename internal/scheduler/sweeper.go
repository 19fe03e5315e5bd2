package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// DueFinalizer resolves campaigns whose deadline has passed.
type DueFinalizer interface {
	SweepDue(ctx context.Context) (int, error)
}

// Sweeper periodically finalizes due campaigns. A run that is still going
// when the next one is due is rescheduled instead of overlapping.
type Sweeper struct {
	finalizer DueFinalizer
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
}

func NewSweeper(finalizer DueFinalizer, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Sweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sweeper{finalizer: finalizer, interval: interval, clock: clock, logger: logger}
}

func (s *Sweeper) Name() string {
	return "campaign_deadline_sweep"
}

// Run schedules the sweep and blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	sched, err := gocron.NewScheduler(
		gocron.WithClock(s.clock),
		gocron.WithLogger(s.logger),
	)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.Sweep(ctx) }),
		gocron.WithName(s.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("register %s: %w", s.Name(), err)
	}

	sched.Start()
	s.logger.Info("scheduler started", slog.String("job", s.Name()), slog.Duration("interval", s.interval))
	<-ctx.Done()

	if err = sched.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// Sweep runs one pass and reports how many campaigns changed state.
func (s *Sweeper) Sweep(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	start := s.clock.Now()
	n, err := s.finalizer.SweepDue(ctx)
	if err != nil {
		s.logger.Error("deadline sweep finished with errors", slog.Int("finalized", n), slog.Any("error", err))
		return n
	}
	if n > 0 {
		s.logger.Info("deadline sweep", slog.Int("finalized", n), slog.Duration("took", s.clock.Since(start)))
	}
	return n
}
