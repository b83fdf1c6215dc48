package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartsplit/expense-splitter/internal/api"
	"github.com/smartsplit/expense-splitter/internal/auth"
	"github.com/smartsplit/expense-splitter/internal/cache"
	"github.com/smartsplit/expense-splitter/internal/config"
	"github.com/smartsplit/expense-splitter/internal/db"
	"github.com/smartsplit/expense-splitter/internal/logger"
	"github.com/smartsplit/expense-splitter/internal/metrics"
	"github.com/smartsplit/expense-splitter/internal/repository/postgres"
	"github.com/smartsplit/expense-splitter/internal/services"
	"github.com/smartsplit/expense-splitter/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	var c cache.Cache
	if cfg.RedisAddr != "" {
		c = cache.NewRedisCache(cfg.RedisAddr)
		log.Info("balance cache", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		c = cache.NewInMemoryCache()
		log.Info("balance cache", "backend", "inmemory")
	}

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, 15*time.Minute, 7*24*time.Hour)

	balanceSvc := services.NewBalanceService(repos.Balances, repos.Groups, repos.Users, repos.AuditLogs, wp, c)
	userSvc := services.NewUserService(repos.Users)
	groupSvc := services.NewGroupService(repos.Groups)
	expenseSvc := services.NewExpenseService(repos.Expenses, repos.Groups, repos.Users, balanceSvc, repos.AuditLogs, wp)
	settlementSvc := services.NewSettlementService(repos.Settlements, repos.Users, balanceSvc, repos.AuditLogs, wp)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:         cfg,
		TM:          tm,
		Users:       userSvc,
		Groups:      groupSvc,
		Expenses:    expenseSvc,
		Settlements: settlementSvc,
		Balances:    balanceSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
