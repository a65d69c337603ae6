package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	JobSourceCron       = "cron"
	JobSourceManualTest = "manual-test"
	JobSourceAPI        = "api"
)

// JobRun is inserted when a job starts and finalized once when it ends.
type JobRun struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	RunID   string `gorm:"type:varchar(64);not null;uniqueIndex"`
	JobName string `gorm:"type:varchar(80);not null;index"`
	Source  string `gorm:"type:varchar(40);not null;index"`

	// Flags the run was started with.
	Meta datatypes.JSON `gorm:"type:jsonb"`

	StartedAt  time.Time  `gorm:"type:timestamptz;not null;index"`
	FinishedAt *time.Time `gorm:"type:timestamptz"`
	Success    bool       `gorm:"not null;default:false"`

	ProcessedCount int             `gorm:"not null;default:0"`
	CompletedCount int             `gorm:"not null;default:0"`
	TotalApplied   decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	ErrorText      string          `gorm:"type:text"`
}

func (JobRun) TableName() string {
	return "job_runs"
}
