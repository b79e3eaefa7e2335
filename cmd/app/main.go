package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gym-membership-service/internal/config"
	"gym-membership-service/internal/infra/api"
	apiv1 "gym-membership-service/internal/infra/api/apiv1"
	pg "gym-membership-service/internal/infra/db/postgres"
	"gym-membership-service/internal/infra/logging"
	"gym-membership-service/internal/infra/metrics"
	red "gym-membership-service/internal/infra/redis"
	"gym-membership-service/internal/infra/sched"
	"gym-membership-service/internal/infra/web"
	"gym-membership-service/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, int32(cfg.Database.PoolSize))
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	membershipRepo := pg.NewMembershipRepo(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient, cfg.Redis.TTL)
	freezeRepo := pg.NewFreezeRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	checkInRepo := pg.NewCheckInRepo(pool)
	reminderRepo := pg.NewReminderRepo(pool)

	// ---- Use cases ----
	membershipUC := usecase.NewMembershipUseCase(membershipRepo, planRepo, txManager, logger)
	freezeUC := usecase.NewFreezeUseCase(membershipRepo, planRepo, freezeRepo, txManager, logger)
	billingUC := usecase.NewBillingUseCase(membershipRepo, planRepo, paymentRepo, freezeRepo, txManager, logger)
	reminderUC := usecase.NewReminderUseCase(paymentRepo, membershipRepo, reminderRepo, txManager, logger)
	checkInUC := usecase.NewCheckInUseCase(membershipRepo, checkInRepo, txManager, logger)
	planUC := usecase.NewPlanUseCase(planRepo)
	statsUC := usecase.NewStatsUseCase(membershipRepo, paymentRepo, checkInRepo)

	// ---- Workers ----
	billingWorker := sched.NewBillingWorker(cfg.Scheduler.BillingInterval, membershipRepo, billingUC, locker, logger)
	go func() { _ = billingWorker.Run(ctx) }()

	sweeper := sched.NewOverdueSweeper(cfg.Scheduler.OverdueSweepInterval, billingUC, logger)
	go func() { _ = sweeper.Run(ctx) }()

	freezeWorker := sched.NewFreezeExpiryWorker(cfg.Scheduler.FreezeExpiryInterval, membershipRepo, freezeUC, logger)
	go func() { _ = freezeWorker.Run(ctx) }()

	// ---- Member/kiosk API ----
	apiSrv := apiv1.NewServer(apiv1.Deps{
		MembershipUC:  membershipUC,
		FreezeUC:      freezeUC,
		BillingUC:     billingUC,
		ReminderUC:    reminderUC,
		CheckInUC:     checkInUC,
		PlanUC:        planUC,
		StatsUC:       statsUC,
		Limiter:       rateLimiter,
		CheckInPerMin: cfg.RateLimit.CheckInPerMinute,
	}, logger)

	memberRouter := chi.NewRouter()
	apiv1.RegisterAPIV1(memberRouter, apiSrv)
	memberRouter.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	memberHandler := api.Chain(memberRouter,
		api.Recover(logger),
		api.TraceID(logger),
		api.RequestLog(logger),
		api.BearerKey(cfg.Auth.MemberAPIKey),
		api.Timeout(30*time.Second),
	)
	memberServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.API.Port), Handler: memberHandler}
	go func() {
		logger.Info().Int("port", cfg.API.Port).Msg("member API listening")
		if err := memberServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("member API server error")
		}
	}()

	// ---- Admin surface (auth, admin API, metrics) ----
	authMgr := web.NewSessionManager(cfg.Auth.AdminSecret, cfg.Auth.SecureCookie && !cfg.Runtime.Dev, cfg.Auth.CookieDomain, cfg.Auth.SessionTTL)
	webSrv := web.NewServer(cfg.Auth.AdminAPIKey, authMgr, logger)

	adminRouter := chi.NewRouter()
	webSrv.RegisterRoutes(adminRouter, apiSrv)
	adminRouter.Handle("/metrics", promhttp.Handler())

	adminHandler := api.Chain(adminRouter,
		api.Recover(logger),
		api.TraceID(logger),
		api.RequestLog(logger),
	)
	adminServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: adminHandler}
	go func() {
		logger.Info().Int("port", cfg.Admin.Port).Msg("admin server listening")
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = memberServer.Shutdown(shutdownCtx)
	_ = adminServer.Shutdown(shutdownCtx)
}
