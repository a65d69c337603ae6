package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompletedInvestment is the write-once snapshot of a finished position.
// The unique OriginalInvestmentID doubles as the archive guard.
type CompletedInvestment struct {
	ID                   uint64 `gorm:"primaryKey;autoIncrement"`
	OriginalInvestmentID uint64 `gorm:"not null;uniqueIndex"`
	UserID               uint64 `gorm:"not null;index"`
	PlanName             string `gorm:"type:varchar(120)"`

	DailyProfit     decimal.Decimal `gorm:"type:numeric(12,6);not null"`
	Duration        int             `gorm:"not null"`
	PrincipalAmount decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	TotalEarned     decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	StartDate   time.Time `gorm:"type:timestamptz;not null"`
	EndDate     time.Time `gorm:"type:timestamptz;not null"`
	CompletedAt time.Time `gorm:"type:timestamptz;not null;index"`
}

func (CompletedInvestment) TableName() string {
	return "completed_investments"
}
