package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvestmentReturn struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	InvestmentID uint64          `gorm:"not null;uniqueIndex:idx_investment_return_day"`
	UserID       uint64          `gorm:"not null;index"`
	Amount       decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	ReturnDate   time.Time       `gorm:"type:date;not null;uniqueIndex:idx_investment_return_day;index"`
	CreatedAt    time.Time       `gorm:"type:timestamptz;autoCreateTime"`
}

func (InvestmentReturn) TableName() string {
	return "investment_returns"
}
