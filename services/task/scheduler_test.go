package task

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"license-tracker/pkg/config"

	"github.com/stretchr/testify/require"
)

func TestSchedulerNextFireUsesZone(t *testing.T) {
	svc, _, _ := newTestService(t)
	dhaka, err := time.LoadLocation("Asia/Dhaka")
	require.NoError(t, err)
	svc.loc = dhaka

	cfg := &config.Config{}
	cfg.Schedule.Cron = "15 10 * * *"
	s, err := NewScheduler(cfg, svc)
	require.NoError(t, err)

	// 04:15 UTC is 10:15 in Dhaka, so the next fire is the following day
	next := s.schedule.Next(fixedNow.In(s.loc))
	require.Equal(t, time.Date(2026, 10, 19, 10, 15, 0, 0, dhaka), next)

	next = s.schedule.Next(time.Date(2026, 10, 18, 9, 0, 0, 0, dhaka))
	require.Equal(t, time.Date(2026, 10, 18, 10, 15, 0, 0, dhaka), next)
}

func TestNewSchedulerRejectsBadCron(t *testing.T) {
	svc, _, _ := newTestService(t)
	cfg := &config.Config{}
	cfg.Schedule.Cron = "every day"

	_, err := NewScheduler(cfg, svc)
	require.Error(t, err)
}

func TestRunDailyEnqueuesOnce(t *testing.T) {
	svc, enq, _ := newTestService(t)
	cfg := &config.Config{}
	cfg.Schedule.Cron = "15 10 * * *"
	s, err := NewScheduler(cfg, svc)
	require.NoError(t, err)

	s.runDaily(context.Background())
	s.runDaily(context.Background())
	require.Len(t, enq.tasks, 1)
}
