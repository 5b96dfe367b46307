package service

import (
	"context"
	"fmt"
	"time"

	"options-dashboard/config"
	"options-dashboard/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService refreshes predictions and holding prices on a cron schedule.
type SchedulerService interface {
	Start(ctx context.Context) error
	Execute(ctx context.Context) error
}

type schedulerService struct {
	cfg        *config.Config
	log        *logger.Logger
	cronParser cron.Parser
	dashboard  Dashboard
	semaphore  chan struct{}
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	dashboard Dashboard,
) SchedulerService {
	return &schedulerService{
		cfg:        cfg,
		log:        log,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		dashboard:  dashboard,
		semaphore:  make(chan struct{}, 1),
	}
}

// Start registers the refresh job and runs it until ctx ends. An empty
// expression disables scheduling.
func (s *schedulerService) Start(ctx context.Context) error {
	expr := s.cfg.Scheduler.RefreshCron
	if expr == "" {
		s.log.InfoContext(ctx, "Refresh scheduler disabled")
		return nil
	}

	schedule, err := s.cronParser.Parse(expr)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", expr, err)
	}

	c := cron.New(cron.WithParser(s.cronParser))
	c.Schedule(schedule, cron.FuncJob(func() {
		jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout())
		defer cancel()
		if err := s.Execute(jobCtx); err != nil {
			s.log.WarnContext(jobCtx, "Scheduled refresh skipped", logger.ErrorField(err))
		}
	}))

	s.log.InfoContext(ctx, "Starting refresh scheduler",
		logger.StringField("cron", expr),
		logger.StringField("next_run", schedule.Next(time.Now()).Format(time.RFC3339)))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("Refresh scheduler stopped")
	return nil
}

// Execute runs one bulk refresh. Overlapping runs are rejected.
func (s *schedulerService) Execute(ctx context.Context) error {
	select {
	case s.semaphore <- struct{}{}:
	default:
		return fmt.Errorf("refresh already running")
	}
	defer func() { <-s.semaphore }()

	start := time.Now()
	s.dashboard.RefreshAll(ctx)
	s.dashboard.RefreshPrices(ctx)

	s.log.InfoContext(ctx, "Refresh completed", logger.Field("duration", time.Since(start)))
	return nil
}

func (s *schedulerService) jobTimeout() time.Duration {
	if s.cfg.Upstream.Timeout > 0 {
		return 2 * s.cfg.Upstream.Timeout
	}
	return time.Minute
}
