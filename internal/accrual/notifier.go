package accrual

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Notifier delivers investment emails. Failures are logged by the job and
// never affect accrual.
type Notifier interface {
	SendInvestmentIncrement(ctx context.Context, to Recipient, notice IncrementNotice) error
	SendInvestmentCompleted(ctx context.Context, to Recipient, notice CompletionNotice) error
}

type Recipient struct {
	UserID uint64
	Email  string
	Name   string
}

type IncrementNotice struct {
	PlanName       string
	Day            int
	Duration       int
	DailyAmount    decimal.Decimal
	TotalEarned    decimal.Decimal
	Principal      decimal.Decimal
	NextAccrualUTC time.Time
}

type CompletionNotice struct {
	PlanName    string
	Duration    int
	TotalEarned decimal.Decimal
	Principal   decimal.Decimal
	EndDateUTC  time.Time
}
