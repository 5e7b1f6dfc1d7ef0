package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"call-cascade/internal/auth"
	"call-cascade/internal/cascade"
	"call-cascade/internal/config"
	"call-cascade/internal/notify"
	"call-cascade/internal/recordings"
	"call-cascade/pkg/logger"
	"call-cascade/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	// Recording sink: Postgres when configured, in-memory otherwise.
	var recordingRepo recordings.Repository = recordings.NewMemoryRepo()
	if cfg.PostgresEnabled() {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		recordingRepo = recordings.NewPostgresRepo(db)
	} else {
		log.Warn("DB_HOST not set, storing recordings in memory")
	}
	recordingSvc := recordings.NewService(recordingRepo)

	// Notification at-most-once guard: Redis when configured.
	var guard notify.Guard
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		guard = notify.NewRedisGuard(rdb, 0)
	}

	dispatcher := notify.NewDispatcher(cfg.Workflow.URL, cfg.Workflow.Secret, notify.Options{
		Guard:  guard,
		Logger: log,
	})
	if !dispatcher.Enabled() {
		log.Warn("WORKFLOW_WEBHOOK_URL not set, exhaustion notifications disabled")
	}

	plan := cascade.Plan{
		Candidates:       cfg.Cascade.Numbers,
		RingTimeout:      cfg.Cascade.RingTimeout,
		VoicemailEnabled: cfg.Cascade.VoicemailEnabled,
		FallbackMessage:  cfg.Cascade.FallbackMessage,
	}
	if plan.Size() == 0 {
		log.Warn("FORWARD_NUMBERS is empty, all calls go straight to fallback")
	}
	controller := cascade.NewController(plan, dispatcher)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		cfg:        cfg,
		auth:       authManager,
		controller: controller,
		recordings: recordingSvc,
		notifier:   dispatcher,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening",
			"addr", srv.Addr,
			"env", cfg.App.Env,
			"candidates", plan.Size(),
			"ring_timeout", plan.RingTimeout,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	if err := dispatcher.Drain(shutdownCtx); err != nil {
		log.Warn("notifier drain interrupted", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
