package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"next_read/catalog"
	"next_read/config"
	"next_read/db"
	"next_read/handlers"
	"next_read/logger"
	"next_read/repository"
	"next_read/scheduler"
	"next_read/services"
)

func main() {
	cfg := config.Load()

	// 初始化日志系统
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	logger.Info("日志系统初始化成功", "level", cfg.Log.Level, "format", cfg.Log.Format, "output", cfg.Log.Output)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 线索日志（可选）
	var leadLog services.LeadLog
	var retention scheduler.LeadRetention
	enabled, err := db.InitMySQLWithConfig(ctx, cfg)
	if err != nil {
		logger.Error("初始化MySQL失败", "error", err)
		os.Exit(1)
	}
	if enabled {
		store := repository.NewLeadStore(db.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("创建 lead_submissions 表失败", "error", err)
			os.Exit(1)
		}
		leadLog, retention = store, store
		logger.Info("MySQL连接成功",
			"max_open_conns", cfg.DB.MaxOpenConns,
			"max_idle_conns", cfg.DB.MaxIdleConns,
			"conn_max_lifetime", cfg.DB.ConnMaxLifetime)
	} else {
		logger.Info("未配置数据库，线索日志已禁用")
	}
	defer db.Close()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("加载文章目录失败", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}
	holder := catalog.NewHolder(cat)
	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		if err := catalog.Watch(ctx, cfg.Catalog.Path, holder); err != nil {
			logger.Warn("目录热加载不可用", "error", err)
		}
	}

	if cfg.Gemini.APIKey == "" {
		logger.Warn(services.ErrAPIKeyMissing.Error())
	}
	if cfg.Webhook.URL == "" {
		logger.Warn("N8N_WEBHOOK_URL is not set, /api/subscribe will reject leads")
	}
	h := handlers.NewHandler(cfg,
		services.NewGeminiGenerator(cfg, holder),
		services.NewWebhookForwarder(cfg, leadLog),
		holder,
		db.DB)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	handlers.RegisterRoutes(r, h)

	// start cron
	sched := scheduler.NewScheduler(cfg, retention)
	if err := sched.Start(); err != nil {
		logger.Error("启动定时任务失败", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Timeouts.RequestSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Timeouts.ResponseSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.Timeouts.IdleSec) * time.Second,
	}

	go func() {
		logger.Info("服务器启动", "address", cfg.Server.Addr)
		logger.Info("Swagger文档可访问", "url", fmt.Sprintf("http://%s/swagger/index.html", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("服务器异常退出", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("正在关闭服务器")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭服务器失败", "error", err)
	}
}
