//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// ---- Mock TransactionManager ----

// MockTxManager runs callbacks inline with a nil tx handle; WithMembershipTx
// serializes across all calls so lock-dependent tests behave like production.
type MockTxManager struct {
	mu sync.Mutex
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

func (m *MockTxManager) WithMembershipTx(ctx context.Context, _ string, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

// ---- Mock MembershipRepository ----

type MockMembershipRepo struct {
	mu    sync.Mutex
	store map[string]*model.Membership

	SaveFunc     func(ctx context.Context, tx repository.Tx, m *model.Membership) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Membership, error)
}

var _ repository.MembershipRepository = (*MockMembershipRepo)(nil)

func NewMockMembershipRepo() *MockMembershipRepo {
	return &MockMembershipRepo{store: map[string]*model.Membership{}}
}

func (r *MockMembershipRepo) Save(ctx context.Context, tx repository.Tx, m *model.Membership) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, m)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.store[m.ID] = &cp
	return nil
}

func (r *MockMembershipRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Membership, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *MockMembershipRepo) FindByMember(ctx context.Context, tx repository.Tx, memberID string) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for _, m := range r.store {
		if m.MemberID == memberID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMembershipRepo) FindBillable(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for _, m := range r.store {
		if m.Status == model.MembershipStatusActive && m.NextBillingDate != nil && !m.NextBillingDate.After(cutoff) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMembershipRepo) FindFrozen(ctx context.Context, tx repository.Tx) ([]*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Membership
	for _, m := range r.store {
		if m.Status == model.MembershipStatusFrozen {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockMembershipRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.MembershipStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.MembershipStatus]int{}
	for _, m := range r.store {
		out[m.Status]++
	}
	return out, nil
}

// ---- Mock PlanRepository ----

type MockPlanRepo struct {
	mu    sync.Mutex
	store map[string]*model.MembershipPlan
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{store: map[string]*model.MembershipPlan{}}
}

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.MembershipPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.store[p.ID] = &cp
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MembershipPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.MembershipPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.MembershipPlan
	for _, p := range r.store {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock FreezeRepository ----

type MockFreezeRepo struct {
	mu    sync.Mutex
	store map[string]*model.MembershipFreeze

	SaveFunc func(ctx context.Context, tx repository.Tx, f *model.MembershipFreeze) error
}

var _ repository.FreezeRepository = (*MockFreezeRepo)(nil)

func NewMockFreezeRepo() *MockFreezeRepo {
	return &MockFreezeRepo{store: map[string]*model.MembershipFreeze{}}
}

func (r *MockFreezeRepo) Save(ctx context.Context, tx repository.Tx, f *model.MembershipFreeze) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, f)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.store[f.ID] = &cp
	return nil
}

func (r *MockFreezeRepo) ListByMembership(ctx context.Context, tx repository.Tx, membershipID string) ([]*model.MembershipFreeze, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.MembershipFreeze
	for _, f := range r.store {
		if f.MembershipID == membershipID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MockFreezeRepo) CountByMembership(ctx context.Context, tx repository.Tx, membershipID string) (int, error) {
	fs, _ := r.ListByMembership(ctx, tx, membershipID)
	return len(fs), nil
}

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu    sync.Mutex
	store map[string]*model.MembershipPayment

	SaveFunc                 func(ctx context.Context, tx repository.Tx, p *model.MembershipPayment) error
	FindByIDFunc             func(ctx context.Context, tx repository.Tx, id string) (*model.MembershipPayment, error)
	FindPendingDueBeforeFunc func(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.MembershipPayment, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: map[string]*model.MembershipPayment{}}
}

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.MembershipPayment) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.store[p.ID] = &cp
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MembershipPayment, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPaymentRepo) ListByMembership(ctx context.Context, tx repository.Tx, membershipID string) ([]*model.MembershipPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.MembershipPayment
	for _, p := range r.store {
		if p.MembershipID == membershipID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *MockPaymentRepo) FindLastByMembership(ctx context.Context, tx repository.Tx, membershipID string) (*model.MembershipPayment, error) {
	ps, _ := r.ListByMembership(ctx, tx, membershipID)
	if len(ps) == 0 {
		return nil, domain.ErrNotFound
	}
	return ps[len(ps)-1], nil
}

func (r *MockPaymentRepo) FindPendingDueBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.MembershipPayment, error) {
	if r.FindPendingDueBeforeFunc != nil {
		return r.FindPendingDueBeforeFunc(ctx, tx, cutoff)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.MembershipPayment
	for _, p := range r.store {
		if p.Status == model.PaymentStatusPending && p.DueDate.Before(cutoff) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.PaymentStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.PaymentStatus]int{}
	for _, p := range r.store {
		out[p.Status]++
	}
	return out, nil
}

func (r *MockPaymentRepo) SumPaidSince(ctx context.Context, tx repository.Tx, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, p := range r.store {
		if p.Status == model.PaymentStatusPaid && p.PaidAt != nil && !p.PaidAt.Before(since) {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

// ---- Mock CheckInRepository ----

type MockCheckInRepo struct {
	mu    sync.Mutex
	store map[string]*model.MembershipCheckIn
}

var _ repository.CheckInRepository = (*MockCheckInRepo)(nil)

func NewMockCheckInRepo() *MockCheckInRepo {
	return &MockCheckInRepo{store: map[string]*model.MembershipCheckIn{}}
}

func (r *MockCheckInRepo) Save(ctx context.Context, tx repository.Tx, c *model.MembershipCheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.store[c.ID] = &cp
	return nil
}

func (r *MockCheckInRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MembershipCheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MockCheckInRepo) FindOpenByMembership(ctx context.Context, tx repository.Tx, membershipID string) (*model.MembershipCheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.store {
		if c.MembershipID == membershipID && c.Open() {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockCheckInRepo) CountByMembership(ctx context.Context, tx repository.Tx, membershipID string, from, until time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.store {
		if c.MembershipID != membershipID {
			continue
		}
		if !from.IsZero() && c.CheckInTime.Before(from) {
			continue
		}
		if !until.IsZero() && !c.CheckInTime.Before(until) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *MockCheckInRepo) CountOpen(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.store {
		if c.Open() {
			n++
		}
	}
	return n, nil
}

// ---- Mock ReminderRepository ----

type MockReminderRepo struct {
	mu    sync.Mutex
	store []*model.MembershipReminder
}

var _ repository.ReminderRepository = (*MockReminderRepo)(nil)

func NewMockReminderRepo() *MockReminderRepo { return &MockReminderRepo{} }

func (r *MockReminderRepo) Save(ctx context.Context, tx repository.Tx, rem *model.MembershipReminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rem
	r.store = append(r.store, &cp)
	return nil
}

func (r *MockReminderRepo) ListByPayment(ctx context.Context, tx repository.Tx, paymentID string) ([]*model.MembershipReminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.MembershipReminder
	for _, rem := range r.store {
		if rem.PaymentID == paymentID {
			cp := *rem
			out = append(out, &cp)
		}
	}
	return out, nil
}
