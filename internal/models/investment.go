package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvestmentStatusActive    = "active"
	InvestmentStatusCompleted = "completed"
)

// Investment is one user's locked principal under a plan. DailyProfit is a
// percentage of PrincipalAmount applied once per UTC day.
type Investment struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	UserID   uint64 `gorm:"not null;index"`
	PlanName string `gorm:"type:varchar(120)"`
	Status   string `gorm:"type:varchar(20);not null;default:'active';index"`

	PrincipalAmount decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	DailyProfit     decimal.Decimal `gorm:"type:numeric(12,6);not null"`
	PlanDuration    int             `gorm:"not null"`
	DaysElapsed     int             `gorm:"not null;default:0"`
	TotalEarned     decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`

	StartDate         time.Time  `gorm:"type:timestamptz;not null;index"`
	FirstProfitDate   *time.Time `gorm:"type:timestamptz"`
	LastReturnApplied *time.Time `gorm:"type:timestamptz;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Investment) TableName() string {
	return "investments"
}
