// Package statushttp exposes a minimal HTTP surface for the reconciliation
// service: a health probe, a status snapshot and enable/disable toggles.
package statushttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lzkill/bsc-arbitrage-check/internal/logger"
	"github.com/lzkill/bsc-arbitrage-check/internal/scheduler"
)

// Server serves the status API.
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig describes the status server dependencies.
type ServerConfig struct {
	Addr      string
	Switch    *scheduler.Switch
	Scheduler *scheduler.Scheduler
}

// NewServer builds the status HTTP server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Switch == nil {
		return nil, errors.New("status http server requires a service switch")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9981"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/status", handleStatus(cfg))
	api.POST("/enable", handleToggle(cfg.Switch, true))
	api.POST("/disable", handleToggle(cfg.Switch, false))

	return &Server{addr: cfg.Addr, router: router}, nil
}

func handleStatus(cfg ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{"enabled": cfg.Switch.Enabled()}
		if cfg.Scheduler != nil {
			resp["cycles"] = cfg.Scheduler.CycleCount()
			if last := cfg.Scheduler.LastCycleAt(); !last.IsZero() {
				resp["last_cycle_at"] = last.UTC().Format(time.RFC3339)
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handleToggle(sw *scheduler.Switch, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sw.Set(enabled)
		logger.Infof("[api] service enabled=%v ip=%s", enabled, c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"enabled": enabled})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, path, c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start runs the HTTP server until ctx is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
