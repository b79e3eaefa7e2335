//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"gym-membership-service/internal/domain"
	"gym-membership-service/internal/domain/model"
)

func TestCheckInRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewCheckInRepo(testPool)
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

	newID := func() string { return ulid.Make().String() }

	t.Run("should track an open visit through checkout", func(t *testing.T) {
		setup(t)

		visit, err := model.NewMembershipCheckIn(newID(), membership.MemberID, membership.ID, time.Now().UTC(), "front-desk")
		if err != nil {
			t.Fatalf("NewMembershipCheckIn failed: %v", err)
		}
		if err := repo.Save(ctx, nil, visit); err != nil {
			t.Fatalf("Failed to save check-in: %v", err)
		}

		open, err := repo.FindOpenByMembership(ctx, nil, membership.ID)
		if err != nil {
			t.Fatalf("FindOpenByMembership failed: %v", err)
		}
		if open.ID != visit.ID {
			t.Fatal("open visit lookup returned the wrong row")
		}

		openCount, err := repo.CountOpen(ctx, nil)
		if err != nil {
			t.Fatalf("CountOpen failed: %v", err)
		}
		if openCount != 1 {
			t.Fatalf("expected 1 open visit, got %d", openCount)
		}

		if err := visit.Close(time.Now().UTC()); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := repo.Save(ctx, nil, visit); err != nil {
			t.Fatalf("Failed to update check-in: %v", err)
		}

		if _, err := repo.FindOpenByMembership(ctx, nil, membership.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after checkout, got %v", err)
		}
	})

	t.Run("should count visits within a window", func(t *testing.T) {
		setup(t)

		base := time.Now().UTC()
		for _, at := range []time.Time{base.AddDate(0, 0, -20), base.AddDate(0, 0, -5), base.AddDate(0, 0, -1)} {
			v, _ := model.NewMembershipCheckIn(newID(), membership.MemberID, membership.ID, at, "front-desk")
			if err := repo.Save(ctx, nil, v); err != nil {
				t.Fatalf("Failed to save check-in: %v", err)
			}
		}

		n, err := repo.CountByMembership(ctx, nil, membership.ID, base.AddDate(0, 0, -7), time.Time{})
		if err != nil {
			t.Fatalf("CountByMembership failed: %v", err)
		}
		if n != 2 {
			t.Fatalf("expected 2 visits in window, got %d", n)
		}

		all, err := repo.CountByMembership(ctx, nil, membership.ID, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("CountByMembership failed: %v", err)
		}
		if all != 3 {
			t.Fatalf("expected 3 visits total, got %d", all)
		}
	})
}
