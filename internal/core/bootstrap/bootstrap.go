// Package bootstrap turns a loaded config into the dependencies both engines share.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"store-rating/internal/core/auth"
	"store-rating/internal/core/cache"
	"store-rating/internal/core/config"
	"store-rating/internal/core/database"
	"store-rating/internal/core/server"
	"store-rating/internal/repo"
	"store-rating/internal/service"
	"store-rating/internal/transport/http/router"
	"store-rating/pkg/mq"
)

type App struct {
	DB   *gorm.DB
	Deps router.Deps

	closers []func()
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New opens the database and the optional redis cache and rabbitmq publisher. Cache and broker
// failures are logged and the feature is disabled; a database failure is fatal to the caller.
func New(ctx context.Context, cfg *config.Config, name string, log *zap.Logger) (*App, error) {
	a := &App{}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                log,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	opts := service.Options{
		Users:    repo.NewUserRepo(db),
		Stores:   repo.NewStoreRepo(db),
		Ratings:  repo.NewRatingRepo(db),
		Strategy: service.ParseStrategy(cfg.Rating.AggregateStrategy),
		Log:      log,
	}

	if cfg.Cache.Enable && cfg.Redis.Addr != "" {
		c := cache.New(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, summary cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
		} else {
			opts.SummaryCache = service.NewSummaryCache(c, cfg.Cache.TTL())
			a.closers = append(a.closers, func() { _ = c.Close() })
			log.Info("summary cache enabled", zap.Duration("ttl", cfg.Cache.TTL()))
		}
	}

	if cfg.MQ.URL != "" {
		pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.App.Name+"-"+name)
		if err != nil {
			log.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		} else {
			opts.Publisher = pub
			a.closers = append(a.closers, func() { _ = pub.Close() })
			log.Info("event publisher ready", zap.String("exchange", cfg.MQ.Exchange))
		}
	}

	a.Deps = router.Deps{
		Log: log,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			Leeway: time.Duration(cfg.JWT.LeewaySec) * time.Second,
		},
		Store:  service.NewStoreService(opts),
		Admin:  service.NewAdminService(opts),
		Server: ServerOptions(cfg),
		Limits: Limits(cfg.App.Limits),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	return a, nil
}

// Limits overlays the configured values on the router defaults field by field.
func Limits(c config.Limits) router.Limits {
	l := router.DefaultLimits()
	if c.RPS > 0 {
		l.RPS = c.RPS
	}
	if c.Burst > 0 {
		l.Burst = c.Burst
	}
	if c.PerIPRPS > 0 {
		l.PerIPRPS = c.PerIPRPS
	}
	if c.PerIPBurst > 0 {
		l.PerIPBurst = c.PerIPBurst
	}
	if c.MaxInFlight > 0 {
		l.MaxInFlight = int64(c.MaxInFlight)
	}
	if c.MaxBodyBytes > 0 {
		l.MaxBodyBytes = c.MaxBodyBytes
	}
	if c.TimeoutSec > 0 {
		l.Timeout = c.Timeout()
	}
	return l
}

func ServerOptions(cfg *config.Config) server.Options {
	mode := gin.DebugMode
	if cfg.App.Env == "prod" || cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	return server.Options{Mode: mode, AllowOrigins: cfg.App.AllowOrigins}
}
