// Package app wires configuration into the running service: the
// reconciliation scheduler, the status HTTP server, the Telegram bot and the
// config watcher.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lzkill/bsc-arbitrage-check/internal/bot"
	"github.com/lzkill/bsc-arbitrage-check/internal/config"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/broker/outbox"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/ledger/gormstore"
	"github.com/lzkill/bsc-arbitrage-check/internal/logger"
	"github.com/lzkill/bsc-arbitrage-check/internal/scheduler"
	statushttp "github.com/lzkill/bsc-arbitrage-check/internal/transport/http"
)

// App owns the application lifecycle: build dependencies, then run every
// long-lived component under one errgroup.
type App struct {
	cfg       *config.Config
	cfgPath   string
	store     *gormstore.Store
	events    *outbox.Store
	sw        *scheduler.Switch
	scheduler *scheduler.Scheduler
	bot       *bot.Bot
	server    *statushttp.Server
}

// NewApp builds the application from configuration (without starting it).
func NewApp(cfg *config.Config, cfgPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	a, err := buildApp(cfg)
	if err != nil {
		return nil, err
	}
	a.cfgPath = cfgPath
	return a, nil
}

// Run starts the scheduler, the status server, the bot and the config
// watcher, and blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.close()

	logger.Infof("%s starting exchange=%s interval=%s enabled=%v",
		a.cfg.App.Name, a.cfg.Exchange.Name, a.cfg.App.CheckInterval(), a.cfg.App.Enabled)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("status http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return a.scheduler.Run(ctx)
	})

	if a.bot != nil {
		group.Go(func() error {
			return a.bot.Run(ctx)
		})
	}

	if a.cfgPath != "" {
		group.Go(func() error {
			err := config.WatchEnabled(ctx, a.cfgPath, a.cfg.App.Enabled, func(enabled bool) {
				a.sw.Set(enabled)
				logger.Infof("service enabled=%v via config reload", enabled)
			})
			if err != nil {
				logger.Warnf("config watcher unavailable: %v", err)
			}
			return nil
		})
	}

	return group.Wait()
}

// Switch exposes the enable switch (for tests and harnesses).
func (a *App) Switch() *scheduler.Switch {
	if a == nil {
		return nil
	}
	return a.sw
}

func (a *App) close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			logger.Warnf("closing event outbox failed: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warnf("closing trade ledger failed: %v", err)
		}
	}
}
