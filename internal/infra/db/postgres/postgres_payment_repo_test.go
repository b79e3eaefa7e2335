//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"gym-membership-service/internal/domain/model"
)

func TestPaymentRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewPaymentRepo(testPool)
	membershipRepo := NewMembershipRepo(testPool)
	planRepo := NewPlanRepo(testPool)

	plan, _ := model.NewMembershipPlan(uuid.NewString(), "Standard", 4900, "EUR", model.BillingIntervalMonthly, 1, 0, 2)
	membership, _ := model.NewMembership(uuid.NewString(), "member-1", plan, time.Now().UTC(), true)

	setup := func(t *testing.T) {
		cleanup(t)
		if err := planRepo.Save(ctx, nil, plan); err != nil {
			t.Fatalf("failed to save plan: %v", err)
		}
		if err := membershipRepo.Save(ctx, nil, membership); err != nil {
			t.Fatalf("failed to save membership: %v", err)
		}
	}

	t.Run("should save and find a payment obligation", func(t *testing.T) {
		setup(t)

		p, err := model.NewMembershipPayment(uuid.NewString(), membership.ID, plan, time.Now().UTC().AddDate(0, 1, 0))
		if err != nil {
			t.Fatalf("NewMembershipPayment failed: %v", err)
		}
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Failed to save payment: %v", err)
		}

		found, err := repo.FindByID(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if found.AmountCents != 4900 || found.Status != model.PaymentStatusPending {
			t.Fatalf("Did not find the correct payment: %+v", found)
		}
	})

	t.Run("should upsert paid status and sum revenue", func(t *testing.T) {
		setup(t)

		p, _ := model.NewMembershipPayment(uuid.NewString(), membership.ID, plan, time.Now().UTC())
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Failed to save payment: %v", err)
		}
		if err := p.MarkPaid(time.Now().UTC()); err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Failed to update payment: %v", err)
		}

		found, err := repo.FindByID(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if found.Status != model.PaymentStatusPaid || found.PaidAt == nil {
			t.Fatalf("upsert did not persist paid status: %+v", found)
		}

		revenue, err := repo.SumPaidSince(ctx, nil, time.Now().UTC().AddDate(0, 0, -1))
		if err != nil {
			t.Fatalf("SumPaidSince failed: %v", err)
		}
		if revenue != 4900 {
			t.Fatalf("unexpected revenue: %d", revenue)
		}
	})

	t.Run("should list only pending payments past due", func(t *testing.T) {
		setup(t)

		overdue, _ := model.NewMembershipPayment(uuid.NewString(), membership.ID, plan, time.Now().UTC().AddDate(0, 0, -3))
		upcoming, _ := model.NewMembershipPayment(uuid.NewString(), membership.ID, plan, time.Now().UTC().AddDate(0, 0, 3))
		for _, p := range []*model.MembershipPayment{overdue, upcoming} {
			if err := repo.Save(ctx, nil, p); err != nil {
				t.Fatalf("Failed to save payment: %v", err)
			}
		}

		due, err := repo.FindPendingDueBefore(ctx, nil, time.Now().UTC())
		if err != nil {
			t.Fatalf("FindPendingDueBefore failed: %v", err)
		}
		if len(due) != 1 || due[0].ID != overdue.ID {
			t.Fatalf("expected only the overdue payment, got %d rows", len(due))
		}

		last, err := repo.FindLastByMembership(ctx, nil, membership.ID)
		if err != nil {
			t.Fatalf("FindLastByMembership failed: %v", err)
		}
		if last.ID != upcoming.ID {
			t.Fatal("FindLastByMembership did not return the latest obligation")
		}
	})

	t.Run("should track reminder audit rows", func(t *testing.T) {
		setup(t)

		reminderRepo := NewReminderRepo(testPool)
		p, _ := model.NewMembershipPayment(uuid.NewString(), membership.ID, plan, time.Now().UTC().AddDate(0, 0, -3))
		if err := repo.Save(ctx, nil, p); err != nil {
			t.Fatalf("Failed to save payment: %v", err)
		}

		rem, err := model.NewMembershipReminder(uuid.NewString(), p.ID, membership.MemberID, model.ReminderTypeFirst, time.Now().UTC(), model.ReminderMethodEmail)
		if err != nil {
			t.Fatalf("NewMembershipReminder failed: %v", err)
		}
		if err := reminderRepo.Save(ctx, nil, rem); err != nil {
			t.Fatalf("Failed to save reminder: %v", err)
		}

		history, err := reminderRepo.ListByPayment(ctx, nil, p.ID)
		if err != nil {
			t.Fatalf("ListByPayment failed: %v", err)
		}
		if len(history) != 1 || history[0].Type != model.ReminderTypeFirst {
			t.Fatalf("unexpected reminder history: %+v", history)
		}
	})
}
