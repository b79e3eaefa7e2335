// Seeds the default plan catalog. Safe to run repeatedly: plans are matched
// by name and skipped when already present.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"gym-membership-service/internal/config"
	"gym-membership-service/internal/domain/model"
	"gym-membership-service/internal/domain/ports/repository"
	pg "gym-membership-service/internal/infra/db/postgres"
)

type seedPlan struct {
	name          string
	priceCents    int64
	currency      string
	interval      model.BillingInterval
	intervalCount int
	trialDays     int
	maxFreezes    int
}

var defaultPlans = []seedPlan{
	{"Basic", 2900, "EUR", model.BillingIntervalMonthly, 1, 0, 1},
	{"Premium", 4900, "EUR", model.BillingIntervalMonthly, 1, 7, 2},
	{"VIP", 49900, "EUR", model.BillingIntervalYearly, 1, 14, 4},
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)

	existing, err := planRepo.ListActive(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	byName := map[string]bool{}
	for _, p := range existing {
		byName[p.Name] = true
	}

	created := 0
	for _, sp := range defaultPlans {
		if byName[sp.name] {
			log.Printf("plan %q already present, skipping", sp.name)
			continue
		}
		plan, err := model.NewMembershipPlan(uuid.NewString(), sp.name, sp.priceCents, sp.currency, sp.interval, sp.intervalCount, sp.trialDays, sp.maxFreezes)
		if err != nil {
			log.Fatalf("plan %q: %v", sp.name, err)
		}
		if err := planRepo.Save(ctx, repository.NoTX, plan); err != nil {
			log.Fatalf("save plan %q: %v", sp.name, err)
		}
		log.Printf("created plan %q (%s)", sp.name, plan.ID)
		created++
	}
	log.Printf("seed complete: %d plan(s) created", created)
}
