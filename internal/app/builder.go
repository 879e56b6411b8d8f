package app

import (
	"fmt"

	"github.com/lzkill/bsc-arbitrage-check/internal/bot"
	"github.com/lzkill/bsc-arbitrage-check/internal/check"
	"github.com/lzkill/bsc-arbitrage-check/internal/config"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/broker"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/broker/outbox"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/exchange"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/ledger"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/ledger/gormstore"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/notifier"
	"github.com/lzkill/bsc-arbitrage-check/internal/pkg/ratelimit"
	"github.com/lzkill/bsc-arbitrage-check/internal/pkg/retry"
	"github.com/lzkill/bsc-arbitrage-check/internal/scheduler"
	statushttp "github.com/lzkill/bsc-arbitrage-check/internal/transport/http"
)

// buildApp wires the full dependency graph: stores, gateways, engine,
// scheduler and the operator surfaces.
func buildApp(cfg *config.Config) (*App, error) {
	store, err := gormstore.New(cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("open trade ledger: %w", err)
	}
	events, err := outbox.Open(cfg.Ledger.OutboxPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open event outbox: %w", err)
	}

	var telegram notifier.TextNotifier
	if cfg.Notify.Telegram.Enabled {
		telegram = notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	}
	hub := broker.NewHub(events, telegram)

	policy := retry.DefaultPolicy()
	ledgerStore := ledger.NewRateLimited(store,
		ratelimit.New(int64(cfg.Ledger.MaxConcurrent), cfg.Ledger.MinInterval()), policy)

	backend, err := gateway.NewExchangeFromConfig(cfg)
	if err != nil {
		events.Close()
		store.Close()
		return nil, fmt.Errorf("build exchange gateway: %w", err)
	}
	exchangeGw := exchange.NewRateLimited(backend,
		ratelimit.New(int64(cfg.Exchange.MaxConcurrent), cfg.Exchange.MinInterval()), policy)

	engine := check.NewEngine(ledgerStore, exchangeGw, hub, check.Params{
		HistorySize: cfg.App.HistorySize,
		TakeProfit:  cfg.App.TakeProfit,
		StopLoss:    cfg.App.StopLoss,
		Grace: check.Grace{
			ExpireAfter: cfg.App.ExpireAfter(),
			RemoveAfter: cfg.App.RemoveAfter(),
		},
	})

	sw := scheduler.NewSwitch(cfg.App.Enabled)
	sched := scheduler.New(engine, sw, cfg.App.CheckInterval())

	var commandBot *bot.Bot
	if cfg.Bot.Enabled {
		commandBot = bot.New(cfg, sw, telegram)
	}

	server, err := statushttp.NewServer(statushttp.ServerConfig{
		Addr:      cfg.App.HTTPAddr,
		Switch:    sw,
		Scheduler: sched,
	})
	if err != nil {
		events.Close()
		store.Close()
		return nil, fmt.Errorf("build status server: %w", err)
	}

	return &App{
		cfg:       cfg,
		store:     store,
		events:    events,
		sw:        sw,
		scheduler: sched,
		bot:       commandBot,
		server:    server,
	}, nil
}
