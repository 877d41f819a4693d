package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	Mode         string // gin mode: debug | release | test
	AllowOrigins []string
	// OnPanic writes the response after a recovered panic; the panic itself is logged with its stack.
	OnPanic gin.RecoveryFunc
}

// NewRouter returns a bare engine with panic recovery and CORS.
func NewRouter(l *zap.Logger, o Options) *gin.Engine {
	if o.Mode != "" {
		gin.SetMode(o.Mode)
	}
	r := gin.New()
	if o.OnPanic != nil {
		r.Use(ginzap.CustomRecoveryWithZap(l, true, o.OnPanic))
	} else {
		r.Use(ginzap.RecoveryWithZap(l, true))
	}
	r.Use(cors.New(corsConfig(o.AllowOrigins)))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID")
	cfg.ExposeHeaders = []string{"X-Request-ID"}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20,
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
