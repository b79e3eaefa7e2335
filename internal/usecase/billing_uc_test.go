//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
	"gym-membership-service/internal/usecase"
)

func newBillingUC(f *fixtures) usecase.BillingUseCase {
	return usecase.NewBillingUseCase(f.memberships, f.plans, f.payments, f.freezes, f.tm, newTestLogger())
}

func TestBillingUseCase_GenerateNextObligation(t *testing.T) {
	ctx := context.Background()

	t.Run("first obligation uses the membership billing date", func(t *testing.T) {
		f := newFixtures()
		m := f.seedMembership(t, 2)
		uc := newBillingUC(f)

		p, err := uc.GenerateNextObligation(ctx, m.ID, time.Now())
		if err != nil {
			t.Fatalf("GenerateNextObligation: %v", err)
		}
		if p.Status != model.PaymentStatusPending {
			t.Errorf("status = %s, want pending", p.Status)
		}
		if !p.DueDate.Equal(*m.NextBillingDate) {
			t.Errorf("DueDate = %v, want %v", p.DueDate, *m.NextBillingDate)
		}
		if p.AmountCents != 4900 || p.Currency != "EUR" {
			t.Errorf("amount = %d %s, want 4900 EUR", p.AmountCents, p.Currency)
		}

		got, _ := f.memberships.FindByID(ctx, nil, m.ID)
		if got.NextBillingDate == nil || !got.NextBillingDate.Equal(p.DueDate) {
			t.Errorf("NextBillingDate = %v, want %v", got.NextBillingDate, p.DueDate)
		}
	})

	t.Run("subsequent obligation advances one interval from the last due date", func(t *testing.T) {
		f := newFixtures()
		m := f.seedMembership(t, 2)
		uc := newBillingUC(f)

		first, err := uc.GenerateNextObligation(ctx, m.ID, time.Now())
		if err != nil {
			t.Fatalf("first: %v", err)
		}
		second, err := uc.GenerateNextObligation(ctx, m.ID, first.DueDate.Add(time.Hour))
		if err != nil {
			t.Fatalf("second: %v", err)
		}
		want := first.DueDate.AddDate(0, 1, 0)
		if !second.DueDate.Equal(want) {
			t.Errorf("second DueDate = %v, want %v", second.DueDate, want)
		}
	})

	t.Run("is a no-op before the billing date arrives", func(t *testing.T) {
		f := newFixtures()
		m := f.seedMembership(t, 2)
		uc := newBillingUC(f)

		first, err := uc.GenerateNextObligation(ctx, m.ID, time.Now())
		if err != nil {
			t.Fatalf("first: %v", err)
		}
		// NextBillingDate is now first.DueDate, which is in the future.
		if _, err := uc.GenerateNextObligation(ctx, m.ID, first.DueDate.Add(-time.Hour)); !errors.Is(err, domain.ErrInvalidState) {
			t.Fatalf("early re-run = %v, want ErrInvalidState", err)
		}
		ps, _ := f.payments.ListByMembership(ctx, nil, m.ID)
		if len(ps) != 1 {
			t.Fatalf("re-run duplicated obligations: %d", len(ps))
		}
	})

	t.Run("refuses while frozen", func(t *testing.T) {
		f := newFixtures()
		m := f.seedMembership(t, 2)
		freezeUC := usecase.NewFreezeUseCase(f.memberships, f.plans, f.freezes, f.tm, newTestLogger())
		uc := newBillingUC(f)

		if _, err := freezeUC.Schedule(ctx, m.ID, time.Now().Add(-time.Hour), time.Now().AddDate(0, 0, 7), ""); err != nil {
			t.Fatalf("freeze: %v", err)
		}
		if _, err := uc.GenerateNextObligation(ctx, m.ID, time.Now()); !errors.Is(err, domain.ErrInvalidState) {
			t.Fatalf("generate while frozen = %v, want ErrInvalidState", err)
		}
	})

	t.Run("frozen time defers the next due date", func(t *testing.T) {
		f := newFixtures()
		m := f.seedMembership(t, 2)
		freezeUC := usecase.NewFreezeUseCase(f.memberships, f.plans, f.freezes, f.tm, newTestLogger())
		uc := newBillingUC(f)

		first, err := uc.GenerateNextObligation(ctx, m.ID, time.Now())
		if err != nil {
			t.Fatalf("first: %v", err)
		}

		freezeEnd := first.DueDate.AddDate(0, 0, 20)
		if _, err := freezeUC.Schedule(ctx, m.ID, first.DueDate.AddDate(0, 0, 3), freezeEnd, ""); err != nil {
			t.Fatalf("freeze: %v", err)
		}
		if _, err := freezeUC.Unfreeze(ctx, m.ID); err != nil {
			t.Fatalf("unfreeze: %v", err)
		}

		second, err := uc.GenerateNextObligation(ctx, m.ID, first.DueDate.Add(time.Hour))
		if err != nil {
			t.Fatalf("second: %v", err)
		}
		want := freezeEnd.AddDate(0, 1, 0)
		if !second.DueDate.Equal(want) {
			t.Errorf("second DueDate = %v, want %v (one interval past the freeze end)", second.DueDate, want)
		}
	})
}

func TestBillingUseCase_Settlement(t *testing.T) {
	ctx := context.Background()

	t.Run("mark paid is idempotent", func(t *testing.T) {
		f := newFixtures()
		m := f.seedMembership(t, 2)
		uc := newBillingUC(f)

		p, err := uc.GenerateNextObligation(ctx, m.ID, time.Now())
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, err := uc.MarkPaid(ctx, p.ID); err != nil {
			t.Fatalf("MarkPaid: %v", err)
		}
		again, err := uc.MarkPaid(ctx, p.ID)
		if err != nil {
			t.Fatalf("second MarkPaid should succeed, got %v", err)
		}
		if again.Status != model.PaymentStatusPaid {
			t.Errorf("status = %s, want paid", again.Status)
		}
	})

	t.Run("mark failed records the reason", func(t *testing.T) {
		f := newFixtures()
		m := f.seedMembership(t, 2)
		uc := newBillingUC(f)

		p, _ := uc.GenerateNextObligation(ctx, m.ID, time.Now())
		failed, err := uc.MarkFailed(ctx, p.ID, "card declined")
		if err != nil {
			t.Fatalf("MarkFailed: %v", err)
		}
		if failed.Status != model.PaymentStatusFailed || failed.FailureReason == nil {
			t.Errorf("failed payment = %+v", failed)
		}
		if _, err := uc.MarkPaid(ctx, p.ID); !errors.Is(err, domain.ErrInvalidState) {
			t.Errorf("MarkPaid on failed = %v, want ErrInvalidState", err)
		}
	})
}

func TestBillingUseCase_SweepOverdue(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()
	m := f.seedMembership(t, 2)
	uc := newBillingUC(f)

	p, err := uc.GenerateNextObligation(ctx, m.ID, time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	t.Run("flips pending past due and only those", func(t *testing.T) {
		n, err := uc.SweepOverdue(ctx, p.DueDate.Add(-time.Hour))
		if err != nil {
			t.Fatalf("early sweep: %v", err)
		}
		if n != 0 {
			t.Fatalf("early sweep flipped %d payments", n)
		}

		n, err = uc.SweepOverdue(ctx, p.DueDate.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if n != 1 {
			t.Fatalf("sweep flipped %d payments, want 1", n)
		}
		got, _ := f.payments.FindByID(ctx, nil, p.ID)
		if got.Status != model.PaymentStatusOverdue {
			t.Errorf("status = %s, want overdue", got.Status)
		}
	})

	t.Run("re-running the sweep is idempotent", func(t *testing.T) {
		n, err := uc.SweepOverdue(ctx, p.DueDate.AddDate(0, 0, 2))
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if n != 0 {
			t.Fatalf("repeat sweep flipped %d payments, want 0", n)
		}
	})

	t.Run("overdue payment can still be settled", func(t *testing.T) {
		paid, err := uc.MarkPaid(ctx, p.ID)
		if err != nil {
			t.Fatalf("MarkPaid on overdue: %v", err)
		}
		if paid.Status != model.PaymentStatusPaid {
			t.Errorf("status = %s, want paid", paid.Status)
		}
	})
}

func TestBillingUseCase_SweepDoesNotRevertSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()
	m := f.seedMembership(t, 2)
	uc := newBillingUC(f)

	p, err := uc.GenerateNextObligation(ctx, m.ID, time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// The scan hands back a stale pending copy while a settlement commits
	// before the sweep re-reads the row under the membership lock.
	f.payments.FindPendingDueBeforeFunc = func(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.MembershipPayment, error) {
		f.payments.FindPendingDueBeforeFunc = nil
		stale, err := f.payments.FindPendingDueBefore(ctx, tx, cutoff)
		if err != nil {
			return nil, err
		}
		if _, err := uc.MarkPaid(ctx, p.ID); err != nil {
			t.Fatalf("MarkPaid during sweep: %v", err)
		}
		return stale, nil
	}

	n, err := uc.SweepOverdue(ctx, p.DueDate.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("sweep flipped %d payments, want 0", n)
	}
	got, _ := f.payments.FindByID(ctx, nil, p.ID)
	if got.Status != model.PaymentStatusPaid || got.PaidAt == nil {
		t.Fatalf("settled payment reverted: status=%s paidAt=%v", got.Status, got.PaidAt)
	}
}
