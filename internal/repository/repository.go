package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ameer851/axix-finance-sub003/internal/models"
)

var (
	// ErrAlreadyAccrued means the position already received today's accrual,
	// either through the ledger's (investment, day) key or a guarded update
	// that matched no row.
	ErrAlreadyAccrued = errors.New("investment already accrued for this day")
	// ErrAlreadyArchived means an archive row exists for the position.
	ErrAlreadyArchived = errors.New("investment already archived")
)

type InvestmentRepository interface {
	// ListEligibleInvestments is a pre-filter only; callers re-validate each row.
	ListEligibleInvestments(ctx context.Context, dayStart time.Time) ([]models.Investment, error)
	ApplyAccrual(ctx context.Context, params ApplyAccrualParams) error
	MarkInvestmentCompleted(ctx context.Context, id uint64) error

	GetCompletedInvestmentByOriginalID(ctx context.Context, investmentID uint64) (*models.CompletedInvestment, error)
	ArchiveInvestment(ctx context.Context, params ArchiveParams) error
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
}

type JobRunRepository interface {
	InsertJobRun(ctx context.Context, item *models.JobRun) error
	FinishJobRun(ctx context.Context, id uint64, params FinishJobRunParams) error
	GetJobRunByID(ctx context.Context, id uint64) (*models.JobRun, error)
	ListJobRuns(ctx context.Context, params ListJobRunsParams) ([]models.JobRun, error)
	CountJobRuns(ctx context.Context, params ListJobRunsParams) (int64, error)
}

type SystemSettingRepository interface {
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
	CountSystemSettings(ctx context.Context, params ListSystemSettingsParams) (int64, error)
}

// Repository is the full store used by the service binaries.
type Repository interface {
	InvestmentRepository
	UserRepository
	JobRunRepository
	SystemSettingRepository
}

// ApplyAccrualParams describes one day of profit for one position.
// ExpectedDaysElapsed is the value the caller read; the update only applies
// when the row still holds it.
type ApplyAccrualParams struct {
	InvestmentID         uint64
	UserID               uint64
	ExpectedDaysElapsed  int
	Amount               decimal.Decimal
	DayStart             time.Time
	AppliedAt            time.Time
	CreditBalance        bool
	ClearFirstProfitDate bool
}

// ArchiveParams unlocks a completed position. Credit is paid into the user's
// balance; Archive.PrincipalAmount is released from active deposits.
type ArchiveParams struct {
	Archive *models.CompletedInvestment
	Credit  decimal.Decimal
}

type FinishJobRunParams struct {
	FinishedAt     time.Time
	Success        bool
	ProcessedCount int
	CompletedCount int
	TotalApplied   decimal.Decimal
	ErrorText      string
}

type ListJobRunsParams struct {
	Limit   int
	Offset  int
	JobName *string
	Source  *string
	OrderBy string
	Asc     *bool
}

type ListSystemSettingsParams struct {
	Limit   int
	Offset  int
	Prefix  *string
	OrderBy string
	Asc     *bool
}
