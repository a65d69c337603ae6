package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"gorm.io/datatypes"

	"github.com/ameer851/axix-finance-sub003/internal/accrual"
	"github.com/ameer851/axix-finance-sub003/internal/models"
	"github.com/ameer851/axix-finance-sub003/internal/repository"
)

type stubSettingsRepo struct {
	mu    sync.Mutex
	items map[string]models.SystemSetting
}

func newStubSettingsRepo() *stubSettingsRepo {
	return &stubSettingsRepo{items: map[string]models.SystemSetting{}}
}

func (r *stubSettingsRepo) UpsertSystemSetting(_ context.Context, item *models.SystemSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.Key] = *item
	return nil
}

func (r *stubSettingsRepo) GetSystemSettingByKey(_ context.Context, key string) (*models.SystemSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[key]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *stubSettingsRepo) ListSystemSettings(context.Context, repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SystemSetting, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func (r *stubSettingsRepo) CountSystemSettings(context.Context, repository.ListSystemSettingsParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *stubSettingsRepo) set(key string, v bool) {
	raw, _ := json.Marshal(v)
	_ = r.UpsertSystemSetting(context.Background(), &models.SystemSetting{Key: key, Value: datatypes.JSON(raw)})
}

type stubRunner struct {
	calls   []accrual.Options
	ctxErrs []error
	err     error
}

func (r *stubRunner) Run(ctx context.Context, opts accrual.Options) (accrual.Result, error) {
	r.calls = append(r.calls, opts)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	if r.err != nil {
		return accrual.Result{}, r.err
	}
	return accrual.Result{Processed: 2}, nil
}

func TestEnsureDefaultSwitchesKeepsStoredValues(t *testing.T) {
	repo := newStubSettingsRepo()
	repo.set(FeatureDailyAccrual, false)
	svc := &SystemSettingsService{Repo: repo}

	if err := svc.EnsureDefaultSwitches(context.Background()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if svc.IsEnabled(context.Background(), FeatureDailyAccrual, true) {
		t.Fatalf("stored OFF switch was flipped")
	}
	if !svc.IsEnabled(context.Background(), FeatureCompletionEmails, false) {
		t.Fatalf("missing switch not seeded")
	}
	if len(repo.items) != len(DefaultFeatureSwitches()) {
		t.Fatalf("items=%d", len(repo.items))
	}
}

func TestSetEnabledRejectsUnknownKey(t *testing.T) {
	svc := &SystemSettingsService{Repo: newStubSettingsRepo()}
	if err := svc.SetEnabled(context.Background(), "feature.nope", true); !errors.Is(err, ErrUnknownSwitch) {
		t.Fatalf("err=%v want ErrUnknownSwitch", err)
	}
	if err := svc.SetEnabled(context.Background(), FeatureIncrementEmails, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !svc.Switches(context.Background())[FeatureIncrementEmails] {
		t.Fatalf("switch not stored")
	}
}

func TestRunScheduledHonorsSwitches(t *testing.T) {
	repo := newStubSettingsRepo()
	runner := &stubRunner{}
	svc := &JobService{Job: runner, Settings: &SystemSettingsService{Repo: repo}, Defaults: JobDefaults{SendCompletionEmails: true}}

	repo.set(FeatureDailyAccrual, false)
	svc.RunScheduled(context.Background())
	if len(runner.calls) != 0 {
		t.Fatalf("run while switch off")
	}

	repo.set(FeatureDailyAccrual, true)
	repo.set(FeatureIncrementEmails, true)
	svc.RunScheduled(context.Background())
	if len(runner.calls) != 1 {
		t.Fatalf("calls=%d want 1", len(runner.calls))
	}
	opts := runner.calls[0]
	if opts.Source != models.JobSourceCron || opts.DryRun || !opts.SendIncrementEmails || !opts.SendCompletionEmails {
		t.Fatalf("opts=%+v", opts)
	}
}

func TestRunManualOverrides(t *testing.T) {
	runner := &stubRunner{}
	svc := &JobService{Job: runner, Defaults: JobDefaults{SendCompletionEmails: true}}

	off := false
	force := true
	res, err := svc.RunManual(context.Background(), ManualRunRequest{DryRun: true, SendCompletionEmails: &off, ForceCreditOnCompletionOnly: &force})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Processed != 2 {
		t.Fatalf("res=%+v", res)
	}
	opts := runner.calls[0]
	if opts.Source != models.JobSourceManualTest || !opts.DryRun || opts.SendCompletionEmails || !opts.ForceCreditOnCompletionOnly {
		t.Fatalf("opts=%+v", opts)
	}

	if _, err := svc.RunManual(context.Background(), ManualRunRequest{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if runner.calls[1].Source != models.JobSourceAPI || !runner.calls[1].SendCompletionEmails {
		t.Fatalf("opts=%+v", runner.calls[1])
	}
}

func TestRunManualPassesLockError(t *testing.T) {
	svc := &JobService{Job: &stubRunner{err: accrual.ErrRunInProgress}}
	if _, err := svc.RunManual(context.Background(), ManualRunRequest{}); !errors.Is(err, accrual.ErrRunInProgress) {
		t.Fatalf("err=%v", err)
	}
}

func TestRunManualSurvivesCanceledRequest(t *testing.T) {
	runner := &stubRunner{}
	svc := &JobService{Job: runner}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.RunManual(ctx, ManualRunRequest{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Processed != 2 {
		t.Fatalf("res=%+v", res)
	}
	if runner.ctxErrs[0] != nil {
		t.Fatalf("job saw ctx err %v", runner.ctxErrs[0])
	}
}
