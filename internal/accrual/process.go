package accrual

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ameer851/axix-finance-sub003/internal/models"
	"github.com/ameer851/axix-finance-sub003/internal/repository"
)

func (r *run) processSafely(ctx context.Context, inv models.Investment) {
	defer func() {
		if p := recover(); p != nil {
			r.event(zapcore.ErrorLevel, EventInvestmentException,
				zap.Uint64("investment_id", inv.ID),
				zap.Uint64("user_id", inv.UserID),
				zap.String("error", fmt.Sprint(p)),
			)
		}
	}()
	if err := r.process(ctx, inv); err != nil {
		r.event(zapcore.ErrorLevel, EventInvestmentException,
			zap.Uint64("investment_id", inv.ID),
			zap.Uint64("user_id", inv.UserID),
			zap.Error(err),
		)
	}
}

// process handles one position. inv is a copy; changes to it only feed the
// completion check and the emails.
func (r *run) process(ctx context.Context, inv models.Investment) error {
	policy := PolicyFor(inv.StartDate, r.job.cutover(), r.opts.ForceCreditOnCompletionOnly)
	r.event(zapcore.InfoLevel, EventConsider,
		zap.Uint64("investment_id", inv.ID),
		zap.Uint64("user_id", inv.UserID),
		zap.String("plan", inv.PlanName),
		zap.Int("days_elapsed", inv.DaysElapsed),
		zap.Int("plan_duration", inv.PlanDuration),
		zap.Time("start_date", inv.StartDate),
		zap.Stringer("policy", policy),
	)

	if AppliedOnDay(inv.LastReturnApplied, r.day) {
		r.event(zapcore.InfoLevel, EventSkipAlreadyApplied,
			zap.Uint64("investment_id", inv.ID),
			zap.Timep("last_return_applied", inv.LastReturnApplied),
		)
		return nil
	}

	if inv.DaysElapsed >= inv.PlanDuration {
		r.event(zapcore.WarnLevel, EventExhaustedActive,
			zap.Uint64("investment_id", inv.ID),
			zap.Int("days_elapsed", inv.DaysElapsed),
			zap.Int("plan_duration", inv.PlanDuration),
		)
		r.complete(ctx, inv, policy)
		return nil
	}

	if inv.FirstProfitDate != nil && inv.FirstProfitDate.After(r.now) {
		r.event(zapcore.InfoLevel, EventSkipNotDue,
			zap.Uint64("investment_id", inv.ID),
			zap.Timep("first_profit_date", inv.FirstProfitDate),
		)
		return nil
	}

	amount := DailyAmount(inv.PrincipalAmount, inv.DailyProfit)
	if !r.opts.DryRun {
		err := r.job.Store.ApplyAccrual(ctx, repository.ApplyAccrualParams{
			InvestmentID:         inv.ID,
			UserID:               inv.UserID,
			ExpectedDaysElapsed:  inv.DaysElapsed,
			Amount:               amount,
			DayStart:             r.day,
			AppliedAt:            r.now,
			CreditBalance:        policy == PolicyDailyCredit,
			ClearFirstProfitDate: inv.FirstProfitDate != nil,
		})
		if errors.Is(err, repository.ErrAlreadyAccrued) {
			r.event(zapcore.InfoLevel, EventSkipAlreadyApplied,
				zap.Uint64("investment_id", inv.ID),
				zap.String("reason", "concurrent_update"),
			)
			return nil
		}
		if err != nil {
			return fmt.Errorf("apply accrual: %w", err)
		}
	}

	inv.DaysElapsed++
	inv.TotalEarned = inv.TotalEarned.Add(amount)
	r.result.Processed++
	r.result.TotalApplied = r.result.TotalApplied.Add(amount)
	r.event(zapcore.InfoLevel, EventAccrualApplied,
		zap.Uint64("investment_id", inv.ID),
		zap.String("amount", amount.String()),
		zap.Int("days_elapsed", inv.DaysElapsed),
		zap.String("total_earned", inv.TotalEarned.String()),
		zap.Bool("credited", policy == PolicyDailyCredit),
	)

	if policy == PolicyDailyCredit && r.opts.SendIncrementEmails && !r.opts.DryRun {
		r.notifyIncrement(ctx, inv, amount)
	}

	if inv.DaysElapsed >= inv.PlanDuration {
		r.complete(ctx, inv, policy)
	}
	return nil
}

// complete archives a position that reached its duration and pays the
// completion credit. A position that already has an archive row is only
// marked completed.
func (r *run) complete(ctx context.Context, inv models.Investment, policy Policy) {
	credit := CompletionCredit(inv, policy)
	fields := []zap.Field{
		zap.Uint64("investment_id", inv.ID),
		zap.Uint64("user_id", inv.UserID),
		zap.Stringer("policy", policy),
		zap.String("principal", inv.PrincipalAmount.String()),
		zap.String("total_earned", inv.TotalEarned.String()),
		zap.String("credit", credit.String()),
	}

	existing, err := r.job.Store.GetCompletedInvestmentByOriginalID(ctx, inv.ID)
	if err != nil {
		r.event(zapcore.ErrorLevel, EventCompletionCreditException, append(fields, zap.Error(err))...)
		return
	}
	if existing != nil {
		r.event(zapcore.WarnLevel, EventCompletionCreditFailed, append(fields, zap.String("reason", "already_archived"))...)
		if r.opts.DryRun {
			return
		}
		if err := r.job.Store.MarkInvestmentCompleted(ctx, inv.ID); err != nil {
			r.event(zapcore.ErrorLevel, EventCompletionCreditException, append(fields, zap.Error(err))...)
		}
		return
	}

	if !r.opts.DryRun {
		err := r.job.Store.ArchiveInvestment(ctx, repository.ArchiveParams{
			Archive: archiveOf(inv, r.now),
			Credit:  credit,
		})
		if errors.Is(err, repository.ErrAlreadyArchived) {
			r.event(zapcore.WarnLevel, EventCompletionCreditFailed, append(fields, zap.String("reason", "already_archived"))...)
			return
		}
		if err != nil {
			r.event(zapcore.ErrorLevel, EventCompletionCreditException, append(fields, zap.Error(err))...)
			return
		}
	}

	r.result.Completed++
	r.event(zapcore.InfoLevel, EventCompletionCreditSuccess, fields...)

	if r.opts.SendCompletionEmails && !r.opts.DryRun {
		r.notifyCompletion(ctx, inv)
	}
}

func archiveOf(inv models.Investment, now time.Time) *models.CompletedInvestment {
	return &models.CompletedInvestment{
		OriginalInvestmentID: inv.ID,
		UserID:               inv.UserID,
		PlanName:             inv.PlanName,
		DailyProfit:          inv.DailyProfit,
		Duration:             inv.PlanDuration,
		PrincipalAmount:      inv.PrincipalAmount,
		TotalEarned:          inv.TotalEarned,
		StartDate:            inv.StartDate,
		EndDate:              inv.StartDate.AddDate(0, 0, inv.PlanDuration),
		CompletedAt:          now,
	}
}
