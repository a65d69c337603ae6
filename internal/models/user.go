package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User maps the columns of the dashboard's users table that accrual touches.
type User struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	Email    string `gorm:"type:varchar(255);index"`
	FullName string `gorm:"type:varchar(255)"`

	Balance        decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	ActiveDeposits decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
