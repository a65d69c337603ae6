package accrual

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ameer851/axix-finance-sub003/internal/models"
)

// Policy decides when accrued profit reaches the user's balance.
type Policy int

const (
	// PolicyDailyCredit pays each day's profit into the balance immediately.
	PolicyDailyCredit Policy = iota
	// PolicyCompletionOnly withholds profit until the plan completes and then
	// pays the accumulated total in one step.
	PolicyCompletionOnly
)

// DefaultPolicyCutover is the historical switch date: positions started on or
// after it are credited on completion only.
var DefaultPolicyCutover = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

var hundred = decimal.NewFromInt(100)

func (p Policy) String() string {
	switch p {
	case PolicyCompletionOnly:
		return "completion_only_credit"
	default:
		return "daily_credit"
	}
}

func PolicyFor(startDate, cutover time.Time, forceCompletionOnly bool) Policy {
	if forceCompletionOnly || !startDate.Before(cutover) {
		return PolicyCompletionOnly
	}
	return PolicyDailyCredit
}

// DailyAmount is one day of profit: principal * rate / 100.
func DailyAmount(principal, ratePct decimal.Decimal) decimal.Decimal {
	return principal.Mul(ratePct).Div(hundred)
}

// CompletionCredit is what completion pays into the balance. Daily-credit
// positions were already paid their profit, so only the principal is left.
func CompletionCredit(inv models.Investment, policy Policy) decimal.Decimal {
	if policy == PolicyCompletionOnly {
		return inv.PrincipalAmount.Add(inv.TotalEarned)
	}
	return inv.PrincipalAmount
}

func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AppliedOnDay reports whether last falls on or after dayStart.
func AppliedOnDay(last *time.Time, dayStart time.Time) bool {
	return last != nil && !last.UTC().Before(dayStart)
}
