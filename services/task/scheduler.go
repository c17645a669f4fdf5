package task

import (
	"context"
	"fmt"
	"time"

	"license-tracker/pkg/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Scheduler struct {
	service  *Service
	schedule cron.Schedule
	loc      *time.Location
	now      func() time.Time
}

func NewScheduler(cfg *config.Config, svc *Service) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(cfg.Schedule.Cron)
	if err != nil {
		return nil, fmt.Errorf("schedule.cron %q: %w", cfg.Schedule.Cron, err)
	}

	return &Scheduler{
		service:  svc,
		schedule: schedule,
		loc:      svc.loc,
		now:      time.Now,
	}, nil
}

// StartScheduler runs the loop for the lifetime of the app.
func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				s.run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("[Scheduler] started license expiry scheduler")

	for {
		now := s.now().In(s.loc)
		next := s.schedule.Next(now)

		sleepDuration := next.Sub(now)
		zap.L().Info("[Scheduler] next run scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", sleepDuration),
		)

		timer := time.NewTimer(sleepDuration)
		select {
		case <-timer.C:
			s.runDaily(ctx)
		case <-ctx.Done():
			timer.Stop()
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}

func (s *Scheduler) runDaily(ctx context.Context) {
	start := time.Now()
	zap.L().Info("[Scheduler] enqueueing daily expiry scan")

	if _, err := s.service.EnqueueScan(ctx, SourceSchedule); err != nil {
		zap.L().Error("[Scheduler] failed to enqueue expiry scan", zap.Error(err))
		return
	}

	zap.L().Info("[Scheduler] enqueued daily expiry scan", zap.Duration("duration", time.Since(start)))
}
