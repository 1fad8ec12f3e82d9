package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/quanpsy/tornamate/logging"
)

// AutoStarter starts every tournament whose start date has passed and
// reports how many were started.
type AutoStarter interface {
	AutoStartDueTournaments(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron     gocron.Scheduler
	starter  AutoStarter
	interval time.Duration
	logger   *logging.Logger
}

// New builds a scheduler that runs starter every interval. A nil clock uses
// wall time.
func New(starter AutoStarter, interval time.Duration, clock clockwork.Clock, logger *logging.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	opts := []gocron.SchedulerOption{gocron.WithLocation(time.UTC)}
	if clock != nil {
		opts = append(opts, gocron.WithClock(clock))
	}
	cron, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		cron:     cron,
		starter:  starter,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
	}, nil
}

// Start registers the auto-start job, runs it once immediately and then every
// interval until Stop is called. ctx is passed to every run.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.runOnce(ctx) }),
		gocron.WithName("auto-start-tournaments"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to register auto-start job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("tournament auto-start scheduler started", "interval", s.interval)
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	started, err := s.starter.AutoStartDueTournaments(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "auto-start run failed", "error", err)
		return
	}
	if started > 0 {
		s.logger.InfoContext(ctx, "tournaments auto-started", "count", started)
	} else {
		s.logger.DebugContext(ctx, "no tournaments due")
	}
}

// Stop waits for a running job to finish and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.logger.Info("tournament auto-start scheduler stopped")
	return nil
}
