package accrual

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/datatypes"

	"github.com/ameer851/axix-finance-sub003/internal/models"
	"github.com/ameer851/axix-finance-sub003/internal/repository"
)

const (
	// JobName identifies the job in job_runs and in every log line.
	JobName = "daily_investment_job"

	DefaultLockKey      = "accrual.daily_investment"
	DefaultEmailTimeout = 15 * time.Second
)

// ErrRunInProgress is returned when another live run holds the job lock.
var ErrRunInProgress = errors.New("daily investment job already running")

// Store is the persistence the job needs.
type Store interface {
	ListEligibleInvestments(ctx context.Context, dayStart time.Time) ([]models.Investment, error)
	ApplyAccrual(ctx context.Context, params repository.ApplyAccrualParams) error
	MarkInvestmentCompleted(ctx context.Context, id uint64) error
	GetCompletedInvestmentByOriginalID(ctx context.Context, investmentID uint64) (*models.CompletedInvestment, error)
	ArchiveInvestment(ctx context.Context, params repository.ArchiveParams) error
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
	InsertJobRun(ctx context.Context, item *models.JobRun) error
	FinishJobRun(ctx context.Context, id uint64, params repository.FinishJobRunParams) error
}

// Locker serializes live runs across processes. release must be safe to call
// once after a successful acquire.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(), acquired bool, err error)
}

type Options struct {
	DryRun                      bool
	Source                      string
	SendIncrementEmails         bool
	SendCompletionEmails        bool
	ForceCreditOnCompletionOnly bool
}

func DefaultOptions() Options {
	return Options{
		Source:               models.JobSourceCron,
		SendCompletionEmails: true,
	}
}

type Result struct {
	Processed    int             `json:"processed"`
	Completed    int             `json:"completed"`
	TotalApplied decimal.Decimal `json:"totalApplied"`
}

// Job runs one pass of the daily accrual over all active positions.
type Job struct {
	Store        Store
	Notifier     Notifier
	Locker       Locker
	Logger       *zap.Logger
	Cutover      time.Time
	LockKey      string
	EmailTimeout time.Duration
	Now          func() time.Time
}

// Run accrues today's profit for every due position and completes the ones
// that reach their plan duration. Per-position failures are logged and do not
// stop the run. A failed fetch returns a zero Result with the error. A
// canceled ctx stops the loop and returns the partial Result with ctx's error.
func (j *Job) Run(ctx context.Context, opts Options) (Result, error) {
	if j == nil || j.Store == nil {
		return zeroResult(), errors.New("accrual job store is nil")
	}
	opts.Source = strings.TrimSpace(opts.Source)
	if opts.Source == "" {
		opts.Source = models.JobSourceCron
	}

	now := j.now()
	r := &run{
		job:    j,
		opts:   opts,
		now:    now,
		day:    DayStart(now),
		runID:  uuid.NewString(),
		result: zeroResult(),
	}
	r.log = j.logger().With(
		zap.String("job", JobName),
		zap.String("run_id", r.runID),
		zap.String("source", opts.Source),
		zap.Bool("dry_run", opts.DryRun),
	)

	if !opts.DryRun && j.Locker != nil {
		release, acquired, err := j.Locker.TryLock(ctx, j.lockKey())
		if err != nil {
			r.event(zapcore.ErrorLevel, EventLockError, zap.Error(err))
			return r.result, fmt.Errorf("acquire job lock: %w", err)
		}
		if !acquired {
			r.event(zapcore.WarnLevel, EventLockBusy, zap.String("lock_key", j.lockKey()))
			return r.result, ErrRunInProgress
		}
		defer release()
	}

	return r.execute(ctx)
}

func (j *Job) now() time.Time {
	if j.Now != nil {
		return j.Now().UTC()
	}
	return time.Now().UTC()
}

func (j *Job) logger() *zap.Logger {
	if j.Logger == nil {
		return zap.NewNop()
	}
	return j.Logger
}

func (j *Job) cutover() time.Time {
	if j.Cutover.IsZero() {
		return DefaultPolicyCutover
	}
	return j.Cutover
}

func (j *Job) lockKey() string {
	if strings.TrimSpace(j.LockKey) == "" {
		return DefaultLockKey
	}
	return j.LockKey
}

func (j *Job) emailTimeout() time.Duration {
	if j.EmailTimeout <= 0 {
		return DefaultEmailTimeout
	}
	return j.EmailTimeout
}

func zeroResult() Result {
	return Result{TotalApplied: decimal.Zero}
}

// run holds the state of a single invocation.
type run struct {
	job    *Job
	opts   Options
	now    time.Time
	day    time.Time
	runID  string
	log    *zap.Logger
	record *models.JobRun
	result Result
	emails sync.WaitGroup
}

func (r *run) execute(ctx context.Context) (Result, error) {
	r.event(zapcore.InfoLevel, EventStart,
		zap.Time("day_start", r.day),
		zap.Time("policy_cutover", r.job.cutover()),
		zap.Bool("send_increment_emails", r.opts.SendIncrementEmails),
		zap.Bool("send_completion_emails", r.opts.SendCompletionEmails),
		zap.Bool("force_credit_on_completion_only", r.opts.ForceCreditOnCompletionOnly),
	)
	r.beginRecord(ctx)

	items, err := r.job.Store.ListEligibleInvestments(ctx, r.day)
	if err != nil {
		r.event(zapcore.ErrorLevel, EventFetchFailed, zap.Error(err))
		r.finalize(ctx, err)
		return zeroResult(), fmt.Errorf("list eligible investments: %w", err)
	}
	r.event(zapcore.InfoLevel, EventFoundInvestments, zap.Int("count", len(items)))

	var runErr error
	for i := range items {
		if err := ctx.Err(); err != nil {
			r.event(zapcore.WarnLevel, EventCanceled, zap.Int("remaining", len(items)-i), zap.Error(err))
			runErr = err
			break
		}
		r.processSafely(ctx, items[i])
	}
	r.emails.Wait()

	r.event(zapcore.InfoLevel, EventSummary,
		zap.Int("eligible", len(items)),
		zap.Int("processed", r.result.Processed),
		zap.Int("completed", r.result.Completed),
		zap.String("total_applied", r.result.TotalApplied.String()),
		zap.Duration("elapsed", r.job.now().Sub(r.now)),
	)
	r.finalize(ctx, runErr)
	if runErr != nil {
		return r.result, fmt.Errorf("daily investment job stopped early: %w", runErr)
	}
	return r.result, nil
}

func (r *run) event(level zapcore.Level, name string, fields ...zap.Field) {
	if ce := r.log.Check(level, name); ce != nil {
		ce.Write(append(fields, zap.String("event", name))...)
	}
}

func (r *run) beginRecord(ctx context.Context) {
	meta, _ := json.Marshal(map[string]any{
		"dry_run":                         r.opts.DryRun,
		"send_increment_emails":           r.opts.SendIncrementEmails,
		"send_completion_emails":          r.opts.SendCompletionEmails,
		"force_credit_on_completion_only": r.opts.ForceCreditOnCompletionOnly,
		"policy_cutover":                  r.job.cutover().Format(time.RFC3339),
	})
	item := &models.JobRun{
		RunID:        r.runID,
		JobName:      JobName,
		Source:       r.opts.Source,
		Meta:         datatypes.JSON(meta),
		StartedAt:    r.now,
		TotalApplied: decimal.Zero,
	}
	if err := r.job.Store.InsertJobRun(ctx, item); err != nil {
		r.event(zapcore.WarnLevel, EventJobRunInsertFailed, zap.Error(err))
		return
	}
	r.record = item
}

// finalize writes the outcome once. It runs even when ctx is already done.
func (r *run) finalize(ctx context.Context, runErr error) {
	if r.record == nil || r.record.ID == 0 {
		return
	}
	params := repository.FinishJobRunParams{
		FinishedAt:     r.job.now(),
		Success:        runErr == nil,
		ProcessedCount: r.result.Processed,
		CompletedCount: r.result.Completed,
		TotalApplied:   r.result.TotalApplied,
	}
	if runErr != nil {
		params.ErrorText = runErr.Error()
	}
	if err := r.job.Store.FinishJobRun(context.WithoutCancel(ctx), r.record.ID, params); err != nil {
		r.event(zapcore.ErrorLevel, EventFinalizeException, zap.Error(err))
	}
}
