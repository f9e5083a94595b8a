package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-user-console/internal/core/auth"
	"go-user-console/internal/core/cache"
	"go-user-console/internal/core/config"
	"go-user-console/internal/core/logger"
	"go-user-console/internal/core/server"
	"go-user-console/internal/gateway"
	"go-user-console/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	// JWT（secret 留空 = 本地开发免鉴权）
	var jwter *auth.JWTer
	if cfg.JWT.Secret != "" {
		jwter = &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		}
	}

	// 按 id 读缓存只在真实后端模式下有意义
	var rc *cache.Cache
	if cfg.Redis.Enable && cfg.Backend.Mode == gateway.ModeHTTP {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// 网关：启动时一次性选定 mock / http
	gw := gateway.New(gateway.Opts{
		Mode:        cfg.Backend.Mode,
		Log:         log,
		MockLatency: cfg.Backend.MockLatency(),
		HTTP: gateway.HTTPOpts{
			BaseURL:    cfg.Backend.BaseURL,
			TenantID:   cfg.Backend.TenantID,
			Timeout:    cfg.Backend.Timeout(),
			MaxRetries: uint64(cfg.Backend.MaxRetries),
			Cache:      rc,
			CacheTTL:   cfg.Backend.CacheTTL(),
		},
	})

	r := router.NewAdminEngine(log, gw, jwter)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user console starting",
		zap.String("addr", addr),
		zap.String("backend", gw.Mode()),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user console start FAILED", zap.Error(err))
		}
	}()
	log.Info("user console started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("user console stopped gracefully")
}
