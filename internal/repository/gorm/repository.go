package gormrepository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ameer851/axix-finance-sub003/internal/models"
	"github.com/ameer851/axix-finance-sub003/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- investments ------------------------------------------------------------

func (s *Store) ListEligibleInvestments(ctx context.Context, dayStart time.Time) ([]models.Investment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	day := dayStart.UTC()
	var items []models.Investment
	if err := s.db.WithContext(ctx).
		Model(&models.Investment{}).
		Where("status = ?", models.InvestmentStatusActive).
		Where("(last_return_applied IS NULL OR last_return_applied < ? OR first_profit_date <= ?)", day, day).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ApplyAccrual(ctx context.Context, params repository.ApplyAccrualParams) error {
	if s == nil || s.db == nil {
		return nil
	}
	if params.InvestmentID == 0 {
		return nil
	}
	day := params.DayStart.UTC()
	appliedAt := params.AppliedAt.UTC()
	if appliedAt.IsZero() {
		appliedAt = time.Now().UTC()
	}
	return s.inTx(ctx, func(tx *gorm.DB) error {
		ledger := &models.InvestmentReturn{
			InvestmentID: params.InvestmentID,
			UserID:       params.UserID,
			Amount:       params.Amount,
			ReturnDate:   day,
			CreatedAt:    appliedAt,
		}
		if err := tx.Create(ledger).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return repository.ErrAlreadyAccrued
			}
			return err
		}

		updates := map[string]any{
			"days_elapsed":        gorm.Expr("days_elapsed + 1"),
			"total_earned":        gorm.Expr("total_earned + ?", params.Amount),
			"last_return_applied": appliedAt,
			"updated_at":          appliedAt,
		}
		if params.ClearFirstProfitDate {
			updates["first_profit_date"] = nil
		}
		res := tx.Model(&models.Investment{}).
			Where("id = ?", params.InvestmentID).
			Where("status = ?", models.InvestmentStatusActive).
			Where("days_elapsed = ?", params.ExpectedDaysElapsed).
			Where("days_elapsed < plan_duration").
			Where("(last_return_applied IS NULL OR last_return_applied < ?)", day).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrAlreadyAccrued
		}

		if !params.CreditBalance {
			return nil
		}
		res = tx.Model(&models.User{}).
			Where("id = ?", params.UserID).
			Updates(map[string]any{
				"balance":    gorm.Expr("balance + ?", params.Amount),
				"updated_at": appliedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("credit balance: user %d not found", params.UserID)
		}
		return nil
	})
}

func (s *Store) MarkInvestmentCompleted(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	if id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ?", id).
		Where("status = ?", models.InvestmentStatusActive).
		Updates(map[string]any{
			"status":       models.InvestmentStatusCompleted,
			"total_earned": decimal.Zero,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (s *Store) GetCompletedInvestmentByOriginalID(ctx context.Context, investmentID uint64) (*models.CompletedInvestment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if investmentID == 0 {
		return nil, nil
	}
	var item models.CompletedInvestment
	err := s.db.WithContext(ctx).
		Model(&models.CompletedInvestment{}).
		Where("original_investment_id = ?", investmentID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ArchiveInvestment(ctx context.Context, params repository.ArchiveParams) error {
	if s == nil || s.db == nil || params.Archive == nil {
		return nil
	}
	archive := params.Archive
	if archive.OriginalInvestmentID == 0 {
		return nil
	}
	now := time.Now().UTC()
	if archive.CompletedAt.IsZero() {
		archive.CompletedAt = now
	}
	return s.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(archive).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return repository.ErrAlreadyArchived
			}
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", archive.UserID).
			Updates(map[string]any{
				"balance":         gorm.Expr("balance + ?", params.Credit),
				"active_deposits": gorm.Expr("GREATEST(active_deposits - ?, 0)", archive.PrincipalAmount),
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("unlock principal: user %d not found", archive.UserID)
		}

		return tx.Model(&models.Investment{}).
			Where("id = ?", archive.OriginalInvestmentID).
			Updates(map[string]any{
				"status":       models.InvestmentStatusCompleted,
				"total_earned": decimal.Zero,
				"updated_at":   now,
			}).Error
	})
}

// --- users ------------------------------------------------------------------

func (s *Store) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if id == 0 {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "email", "full_name", "balance", "active_deposits").
		Where("id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- job runs ---------------------------------------------------------------

func (s *Store) InsertJobRun(ctx context.Context, item *models.JobRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) FinishJobRun(ctx context.Context, id uint64, params repository.FinishJobRunParams) error {
	if s == nil || s.db == nil {
		return nil
	}
	if id == 0 {
		return nil
	}
	finishedAt := params.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Model(&models.JobRun{}).
		Where("id = ?", id).
		Where("finished_at IS NULL").
		Updates(map[string]any{
			"finished_at":     &finishedAt,
			"success":         params.Success,
			"processed_count": params.ProcessedCount,
			"completed_count": params.CompletedCount,
			"total_applied":   params.TotalApplied,
			"error_text":      params.ErrorText,
		}).Error
}

func (s *Store) GetJobRunByID(ctx context.Context, id uint64) (*models.JobRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if id == 0 {
		return nil, nil
	}
	var item models.JobRun
	err := s.db.WithContext(ctx).Model(&models.JobRun{}).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListJobRuns(ctx context.Context, params repository.ListJobRunsParams) ([]models.JobRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := jobRunsQuery(s.db.WithContext(ctx), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "started_at")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.JobRun
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountJobRuns(ctx context.Context, params repository.ListJobRunsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := jobRunsQuery(s.db.WithContext(ctx), params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func jobRunsQuery(db *gorm.DB, params repository.ListJobRunsParams) *gorm.DB {
	query := db.Model(&models.JobRun{})
	if params.JobName != nil && strings.TrimSpace(*params.JobName) != "" {
		query = query.Where("job_name = ?", strings.TrimSpace(*params.JobName))
	}
	if params.Source != nil && strings.TrimSpace(*params.Source) != "" {
		query = query.Where("source = ?", strings.TrimSpace(*params.Source))
	}
	return query
}

// --- system settings --------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Key = strings.TrimSpace(item.Key)
	if item.Key == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var item models.SystemSetting
	err := s.db.WithContext(ctx).Model(&models.SystemSetting{}).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		query = query.Where("key LIKE ?", strings.TrimSpace(*params.Prefix)+"%")
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "key")
	limit := normalizeLimit(params.Limit, 500)
	offset := normalizeOffset(params.Offset)
	var items []models.SystemSetting
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		query = query.Where("key LIKE ?", strings.TrimSpace(*params.Prefix)+"%")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	desc := asc == nil || !*asc
	return query.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc})
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

var _ repository.Repository = (*Store)(nil)
