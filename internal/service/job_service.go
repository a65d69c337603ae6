package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ameer851/axix-finance-sub003/internal/accrual"
	"github.com/ameer851/axix-finance-sub003/internal/models"
	"github.com/ameer851/axix-finance-sub003/internal/paas"
	"github.com/ameer851/axix-finance-sub003/internal/repository"
)

// JobRunner is satisfied by *accrual.Job.
type JobRunner interface {
	Run(ctx context.Context, opts accrual.Options) (accrual.Result, error)
}

// JobDefaults are the options used when neither a switch nor a request
// overrides them.
type JobDefaults struct {
	SendIncrementEmails         bool
	SendCompletionEmails        bool
	ForceCreditOnCompletionOnly bool
}

type JobService struct {
	Job      JobRunner
	Runs     repository.JobRunRepository
	Settings *SystemSettingsService
	PaaS     *paas.Client
	Logger   *zap.Logger
	Defaults JobDefaults
}

// ManualRunRequest overrides the scheduled options. Nil fields keep them.
type ManualRunRequest struct {
	DryRun                      bool  `json:"dry_run"`
	SendIncrementEmails         *bool `json:"send_increment_emails"`
	SendCompletionEmails        *bool `json:"send_completion_emails"`
	ForceCreditOnCompletionOnly *bool `json:"force_credit_on_completion_only"`
}

// RunScheduled is the cron entry point. It does nothing while the
// daily accrual switch is off.
func (s *JobService) RunScheduled(ctx context.Context) {
	if !s.Settings.IsEnabled(ctx, FeatureDailyAccrual, true) {
		s.logger().Info("daily accrual disabled by switch", zap.String("switch", FeatureDailyAccrual))
		return
	}
	opts := s.scheduledOptions(ctx)
	opts.Source = models.JobSourceCron
	if _, err := s.run(ctx, opts); err != nil {
		s.logger().Error("scheduled daily accrual failed", zap.Error(err))
	}
}

// RunManual runs detached from ctx's cancellation so a dropped admin
// connection cannot stop the job between positions.
func (s *JobService) RunManual(ctx context.Context, req ManualRunRequest) (accrual.Result, error) {
	ctx = context.WithoutCancel(ctx)
	opts := s.scheduledOptions(ctx)
	opts.DryRun = req.DryRun
	opts.Source = models.JobSourceAPI
	if req.DryRun {
		opts.Source = models.JobSourceManualTest
	}
	if req.SendIncrementEmails != nil {
		opts.SendIncrementEmails = *req.SendIncrementEmails
	}
	if req.SendCompletionEmails != nil {
		opts.SendCompletionEmails = *req.SendCompletionEmails
	}
	if req.ForceCreditOnCompletionOnly != nil {
		opts.ForceCreditOnCompletionOnly = *req.ForceCreditOnCompletionOnly
	}
	return s.run(ctx, opts)
}

func (s *JobService) ListRuns(ctx context.Context, params repository.ListJobRunsParams) ([]models.JobRun, int64, error) {
	if s == nil || s.Runs == nil {
		return nil, 0, errors.New("job run repo is nil")
	}
	items, err := s.Runs.ListJobRuns(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Runs.CountJobRuns(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *JobService) GetRun(ctx context.Context, id uint64) (*models.JobRun, error) {
	if s == nil || s.Runs == nil {
		return nil, errors.New("job run repo is nil")
	}
	return s.Runs.GetJobRunByID(ctx, id)
}

func (s *JobService) scheduledOptions(ctx context.Context) accrual.Options {
	return accrual.Options{
		SendIncrementEmails:         s.Settings.IsEnabled(ctx, FeatureIncrementEmails, s.Defaults.SendIncrementEmails),
		SendCompletionEmails:        s.Settings.IsEnabled(ctx, FeatureCompletionEmails, s.Defaults.SendCompletionEmails),
		ForceCreditOnCompletionOnly: s.Defaults.ForceCreditOnCompletionOnly,
	}
}

func (s *JobService) run(ctx context.Context, opts accrual.Options) (accrual.Result, error) {
	if s == nil || s.Job == nil {
		return accrual.Result{}, errors.New("accrual job is nil")
	}
	start := time.Now()
	res, err := s.Job.Run(ctx, opts)

	level := "info"
	details := map[string]any{
		"source":        opts.Source,
		"dry_run":       opts.DryRun,
		"processed":     res.Processed,
		"completed":     res.Completed,
		"total_applied": res.TotalApplied.String(),
		"duration":      time.Since(start).String(),
	}
	switch {
	case errors.Is(err, accrual.ErrRunInProgress):
		level = "warn"
		details["error"] = err.Error()
	case err != nil:
		level = "error"
		details["error"] = err.Error()
	}
	s.PaaS.LogBestEffort(ctx, "accrual_run", level, details)
	return res, err
}

func (s *JobService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
