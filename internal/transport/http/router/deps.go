package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"store-rating/internal/core/auth"
	"store-rating/internal/core/server"
	"store-rating/internal/service"
	mdw "store-rating/internal/transport/http/middleware"
	resp "store-rating/internal/transport/http/response"
)

type Limits struct {
	RPS          float64
	Burst        int
	PerIPRPS     float64
	PerIPBurst   int
	MaxInFlight  int64
	MaxBodyBytes int64
	Timeout      time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		RPS:          200,
		Burst:        400,
		PerIPRPS:     20,
		PerIPBurst:   40,
		MaxInFlight:  300,
		MaxBodyBytes: 1 << 20,
		Timeout:      10 * time.Second,
	}
}

type Deps struct {
	Log    *zap.Logger
	JWT    *auth.JWTer
	Store  *service.StoreService
	Admin  *service.AdminService
	Server server.Options
	Limits Limits
	// Ping backs /health; nil reports healthy.
	Ping func(context.Context) error
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Limits == (Limits{}) {
		d.Limits = DefaultLimits()
	}
	return d
}

// newEngine builds the middleware chain shared by both engines.
func newEngine(d Deps, name string) *gin.Engine {
	opts := d.Server
	opts.OnPanic = func(c *gin.Context, _ any) {
		resp.Abort(c, resp.CodeServerError, "internal error")
	}
	r := server.NewRouter(d.Log, opts)

	lim := d.Limits
	r.Use(
		mdw.RequestID(),
		mdw.Metrics(name),
		mdw.AccessLog(d.Log),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst, 10*time.Minute),
		mdw.ConcurrencyLimit(lim.MaxInFlight),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.Timeout),
	)

	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(c.Request.Context()); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", mdw.MetricsHandler())
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "") })
	return r
}
