package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/config"
	"license-tracker/pkg/errutil"
	queue "license-tracker/pkg/task"
	"license-tracker/pkg/taskname"
	"license-tracker/services/expiry"
	"license-tracker/services/license"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// scheduledRetention keeps a finished daily task around so a second fire on
// the same day collides on its task ID.
const scheduledRetention = 24 * time.Hour

// ScanRunner executes one expiry scan.
type ScanRunner interface {
	Run(ctx context.Context) (expiry.ScanResult, error)
	Policy() *expiry.Policy
}

type Service struct {
	repo     Repository
	node     *snowflake.Node
	enqueuer queue.Enqueuer
	scanner  ScanRunner
	authz    authz.Authorizer
	loc      *time.Location
	now      func() time.Time
}

type Params struct {
	fx.In

	Config     *config.Config
	Repository Repository
	Node       *snowflake.Node
	Authorizer authz.Authorizer
	Enqueuer   queue.Enqueuer  `optional:"true"`
	Scanner    *expiry.Scanner `optional:"true"`
}

func NewService(p Params) (*Service, error) {
	loc, err := expiry.LoadLocation(p.Config.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}

	s := &Service{
		repo:     p.Repository,
		node:     p.Node,
		enqueuer: p.Enqueuer,
		authz:    p.Authorizer,
		loc:      loc,
		now:      time.Now,
	}
	if p.Scanner != nil {
		s.scanner = p.Scanner
	}
	return s, nil
}

// EnqueueScan queues one scan. Scheduled scans carry a per-day task ID so
// the queue rejects a second fire on the same day.
func (s *Service) EnqueueScan(ctx context.Context, source string) (*asynq.TaskInfo, error) {
	if s.enqueuer == nil {
		return nil, errutil.ServiceUnavailable("task queue not configured", nil)
	}

	day := s.now().In(s.loc).Format(license.DateLayout)
	payload, err := json.Marshal(ScanPayload{Source: source, Date: day})
	if err != nil {
		return nil, errutil.Internal("failed to encode task payload", err)
	}

	opts := []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Queue(queue.QueueCritical),
	}
	if source == SourceSchedule {
		opts = append(opts,
			asynq.TaskID(taskname.LicenseExpiryScan+":"+day),
			asynq.Retention(scheduledRetention),
		)
	}

	info, err := s.enqueuer.Enqueue(ctx, asynq.NewTask(taskname.LicenseExpiryScan, payload), opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			zap.L().Info("expiry scan already enqueued", zap.String("date", day), zap.String("source", source))
			return nil, errutil.Conflict("scan already enqueued for "+day, err)
		}
		zap.L().Error("failed to enqueue expiry scan", zap.String("source", source), zap.Error(err))
		return nil, errutil.ServiceUnavailable("failed to enqueue scan", err)
	}

	zap.L().Info("enqueued expiry scan",
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue),
		zap.String("source", source),
		zap.String("date", day),
	)
	return info, nil
}

// TriggerScan is the admin "scan now" action.
func (s *Service) TriggerScan(ctx context.Context, actor authz.Principal) (*asynq.TaskInfo, error) {
	if err := s.authz.Authorize(actor, authz.ResourceScan, authz.ActionTrigger).Err(); err != nil {
		return nil, err
	}
	return s.EnqueueScan(ctx, SourceManual)
}

// HandleScanTask is the asynq handler for taskname.LicenseExpiryScan.
func (s *Service) HandleScanTask(ctx context.Context, t *asynq.Task) error {
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	_, _, err := s.RunScan(ctx, payload.Source)
	return err
}

// jobMetadata returns nil when the metadata cannot be encoded, the job is
// recorded without it.
func jobMetadata(source string, policy map[string]any) datatypes.JSON {
	meta, err := json.Marshal(map[string]any{
		"source": source,
		"policy": policy,
	})
	if err != nil {
		zap.L().Error("failed to encode scan job metadata", zap.String("source", source), zap.Error(err))
		return nil
	}
	return datatypes.JSON(meta)
}

// RunScan executes the scanner in-process and records the run as a Job.
func (s *Service) RunScan(ctx context.Context, source string) (*Job, expiry.ScanResult, error) {
	if s.scanner == nil {
		return nil, expiry.ScanResult{}, errors.New("expiry scanner not configured")
	}

	started := s.now().UTC()
	job := &Job{
		ID:        s.node.Generate().String(),
		TaskName:  taskname.LicenseExpiryScan,
		Status:    StatusRunning,
		StartedAt: &started,
		Metadata:  jobMetadata(source, s.scanner.Policy().Describe()),
	}
	if err := s.repo.Create(ctx, job); err != nil {
		// the scan still runs, the record is bookkeeping
		zap.L().Error("failed to record scan job", zap.Error(err))
		job = nil
	}

	result, runErr := s.scanner.Run(ctx)

	status, errMsg := StatusSuccess, ""
	if runErr != nil {
		status, errMsg = StatusFailed, runErr.Error()
	}

	if job != nil {
		done := s.now().UTC()
		if err := s.repo.Finish(ctx, job.ID, status, errMsg, result.Processed, result.Notified, done); err != nil {
			zap.L().Error("failed to finish scan job", zap.String("job_id", job.ID), zap.Error(err))
		}
		job.Status, job.ErrorMsg = status, errMsg
		job.Processed, job.Notified = result.Processed, result.Notified
		job.CompletedAt = &done
	}

	if runErr != nil {
		zap.L().Error("expiry scan failed", zap.String("source", source), zap.Error(runErr))
		return job, result, runErr
	}
	return job, result, nil
}
