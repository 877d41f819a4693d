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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"store-rating/internal/core/bootstrap"
	"store-rating/internal/core/config"
	"store-rating/internal/core/logger"
	"store-rating/internal/core/server"
	"store-rating/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate(cfg.Log.Rotate))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "admin", log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.Close()

	r := router.NewAdminEngine(app.Deps)

	hc := cfg.App.Admin
	addr := server.Addr(hc.Host, hc.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(hc.ReadTimeoutSec)*time.Second,
		time.Duration(hc.WriteTimeoutSec)*time.Second,
		time.Duration(hc.IdleTimeoutSec)*time.Second,
	)

	host4human := hc.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(hc.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		log.Error("admin api listen failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("admin api shutdown", zap.Error(err))
	}
	log.Info("admin api stopped gracefully")
}
