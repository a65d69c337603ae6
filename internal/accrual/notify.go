package accrual

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ameer851/axix-finance-sub003/internal/models"
)

func (r *run) notifyIncrement(ctx context.Context, inv models.Investment, amount decimal.Decimal) {
	if r.job.Notifier == nil {
		return
	}
	to, err := r.recipient(ctx, inv.UserID)
	if err != nil {
		r.event(zapcore.WarnLevel, EventIncrementEmailError, zap.Uint64("investment_id", inv.ID), zap.Error(err))
		return
	}
	notice := IncrementNotice{
		PlanName:       inv.PlanName,
		Day:            inv.DaysElapsed,
		Duration:       inv.PlanDuration,
		DailyAmount:    amount,
		TotalEarned:    inv.TotalEarned,
		Principal:      inv.PrincipalAmount,
		NextAccrualUTC: r.day.Add(24 * time.Hour),
	}
	r.dispatch(ctx, EventIncrementEmailError, inv.ID, func(ctx context.Context) error {
		return r.job.Notifier.SendInvestmentIncrement(ctx, to, notice)
	})
}

func (r *run) notifyCompletion(ctx context.Context, inv models.Investment) {
	if r.job.Notifier == nil {
		return
	}
	to, err := r.recipient(ctx, inv.UserID)
	if err != nil {
		r.event(zapcore.WarnLevel, EventCompletionEmailError, zap.Uint64("investment_id", inv.ID), zap.Error(err))
		return
	}
	notice := CompletionNotice{
		PlanName:    inv.PlanName,
		Duration:    inv.PlanDuration,
		TotalEarned: inv.TotalEarned,
		Principal:   inv.PrincipalAmount,
		EndDateUTC:  r.now,
	}
	r.dispatch(ctx, EventCompletionEmailError, inv.ID, func(ctx context.Context) error {
		return r.job.Notifier.SendInvestmentCompleted(ctx, to, notice)
	})
}

func (r *run) recipient(ctx context.Context, userID uint64) (Recipient, error) {
	user, err := r.job.Store.GetUserByID(ctx, userID)
	if err != nil {
		return Recipient{}, fmt.Errorf("load user %d: %w", userID, err)
	}
	if user == nil {
		return Recipient{}, fmt.Errorf("user %d not found", userID)
	}
	if strings.TrimSpace(user.Email) == "" {
		return Recipient{}, fmt.Errorf("user %d has no email", userID)
	}
	return Recipient{UserID: user.ID, Email: user.Email, Name: user.FullName}, nil
}

// dispatch sends in the background with a timeout. The run waits for all
// dispatched sends before writing its summary.
func (r *run) dispatch(ctx context.Context, errEvent string, investmentID uint64, send func(context.Context) error) {
	base := context.WithoutCancel(ctx)
	timeout := r.job.emailTimeout()
	r.emails.Add(1)
	go func() {
		defer r.emails.Done()
		defer func() {
			if p := recover(); p != nil {
				r.event(zapcore.WarnLevel, errEvent, zap.Uint64("investment_id", investmentID), zap.String("error", fmt.Sprint(p)))
			}
		}()
		sendCtx, cancel := context.WithTimeout(base, timeout)
		defer cancel()
		if err := send(sendCtx); err != nil {
			r.event(zapcore.WarnLevel, errEvent, zap.Uint64("investment_id", investmentID), zap.Error(err))
		}
	}()
}
