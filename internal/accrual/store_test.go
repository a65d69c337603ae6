package accrual

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ameer851/axix-finance-sub003/internal/models"
	"github.com/ameer851/axix-finance-sub003/internal/repository"
)

// memStore mirrors the guards of the gorm store: one ledger row per
// (investment, day), a days_elapsed compare on update and one archive row
// per position.
type memStore struct {
	mu sync.Mutex

	investments map[uint64]*models.Investment
	users       map[uint64]*models.User
	returns     map[string]models.InvestmentReturn
	archives    map[uint64]models.CompletedInvestment
	runs        []*models.JobRun
	finished    map[uint64]repository.FinishJobRunParams

	// listAll disables the eligibility pre-filter so the job's own checks run.
	listAll    bool
	listErr    error
	applyErrs  map[uint64]error
	listCalls  int
	applyCalls int

	// hideArchives makes the archive lookup miss, as when another writer
	// archives between the job's check and its insert.
	hideArchives bool
	// afterApply runs after each successful accrual write.
	afterApply func(id uint64)
}

func newMemStore() *memStore {
	return &memStore{
		investments: map[uint64]*models.Investment{},
		users:       map[uint64]*models.User{},
		returns:     map[string]models.InvestmentReturn{},
		archives:    map[uint64]models.CompletedInvestment{},
		finished:    map[uint64]repository.FinishJobRunParams{},
		applyErrs:   map[uint64]error{},
	}
}

func (m *memStore) addUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := u
	m.users[u.ID] = &cp
}

func (m *memStore) addInvestment(inv models.Investment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := inv
	if cp.Status == "" {
		cp.Status = models.InvestmentStatusActive
	}
	m.investments[inv.ID] = &cp
}

func (m *memStore) investment(id uint64) models.Investment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.investments[id]
}

func (m *memStore) user(id uint64) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

func (m *memStore) archiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.archives)
}

func (m *memStore) returnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.returns)
}

func (m *memStore) ListEligibleInvestments(_ context.Context, dayStart time.Time) ([]models.Investment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Investment
	for _, inv := range m.investments {
		if inv.Status != models.InvestmentStatusActive {
			continue
		}
		due := inv.LastReturnApplied == nil || inv.LastReturnApplied.Before(dayStart) ||
			(inv.FirstProfitDate != nil && !inv.FirstProfitDate.After(dayStart))
		if !due && !m.listAll {
			continue
		}
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ApplyAccrual(_ context.Context, p repository.ApplyAccrualParams) error {
	if err := m.applyAccrual(p); err != nil {
		return err
	}
	if m.afterApply != nil {
		m.afterApply(p.InvestmentID)
	}
	return nil
}

func (m *memStore) applyAccrual(p repository.ApplyAccrualParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyCalls++
	if err := m.applyErrs[p.InvestmentID]; err != nil {
		return err
	}
	key := fmt.Sprintf("%d/%s", p.InvestmentID, p.DayStart.Format("2006-01-02"))
	if _, ok := m.returns[key]; ok {
		return repository.ErrAlreadyAccrued
	}
	inv := m.investments[p.InvestmentID]
	if inv == nil || inv.Status != models.InvestmentStatusActive ||
		inv.DaysElapsed != p.ExpectedDaysElapsed || inv.DaysElapsed >= inv.PlanDuration ||
		AppliedOnDay(inv.LastReturnApplied, p.DayStart) {
		return repository.ErrAlreadyAccrued
	}
	var user *models.User
	if p.CreditBalance {
		user = m.users[p.UserID]
		if user == nil {
			return errors.New("user not found")
		}
	}
	m.returns[key] = models.InvestmentReturn{InvestmentID: p.InvestmentID, UserID: p.UserID, Amount: p.Amount, ReturnDate: p.DayStart}
	inv.DaysElapsed++
	inv.TotalEarned = inv.TotalEarned.Add(p.Amount)
	applied := p.AppliedAt
	inv.LastReturnApplied = &applied
	if p.ClearFirstProfitDate {
		inv.FirstProfitDate = nil
	}
	if user != nil {
		user.Balance = user.Balance.Add(p.Amount)
	}
	return nil
}

func (m *memStore) MarkInvestmentCompleted(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv := m.investments[id]; inv != nil {
		inv.Status = models.InvestmentStatusCompleted
		inv.TotalEarned = decimal.Zero
	}
	return nil
}

func (m *memStore) GetCompletedInvestmentByOriginalID(_ context.Context, id uint64) (*models.CompletedInvestment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.archives[id]
	if !ok || m.hideArchives {
		return nil, nil
	}
	return &item, nil
}

func (m *memStore) ArchiveInvestment(_ context.Context, p repository.ArchiveParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := p.Archive.OriginalInvestmentID
	if _, ok := m.archives[id]; ok {
		return repository.ErrAlreadyArchived
	}
	user := m.users[p.Archive.UserID]
	if user == nil {
		return errors.New("user not found")
	}
	m.archives[id] = *p.Archive
	user.Balance = user.Balance.Add(p.Credit)
	user.ActiveDeposits = decimal.Max(user.ActiveDeposits.Sub(p.Archive.PrincipalAmount), decimal.Zero)
	if inv := m.investments[id]; inv != nil {
		inv.Status = models.InvestmentStatusCompleted
		inv.TotalEarned = decimal.Zero
	}
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id uint64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) InsertJobRun(_ context.Context, item *models.JobRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = uint64(len(m.runs) + 1)
	m.runs = append(m.runs, item)
	return nil
}

func (m *memStore) FinishJobRun(_ context.Context, id uint64, p repository.FinishJobRunParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.finished[id]; ok {
		return nil
	}
	m.finished[id] = p
	return nil
}

type sentEmail struct {
	kind string
	to   Recipient
}

type stubNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentEmail
}

func (n *stubNotifier) SendInvestmentIncrement(_ context.Context, to Recipient, _ IncrementNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEmail{kind: "increment", to: to})
	return n.err
}

func (n *stubNotifier) SendInvestmentCompleted(_ context.Context, to Recipient, _ CompletionNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEmail{kind: "completed", to: to})
	return n.err
}

func (n *stubNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.kind == kind {
			c++
		}
	}
	return c
}

type stubLocker struct {
	busy     bool
	err      error
	released int
}

func (l *stubLocker) TryLock(context.Context, string) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.busy {
		return nil, false, nil
	}
	return func() { l.released++ }, true, nil
}
