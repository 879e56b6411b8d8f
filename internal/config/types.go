package config

import (
	"time"
)

// Config is the main configuration carrier for the reconciliation service.
type Config struct {
	App      AppConfig      `toml:"app"`
	Exchange ExchangeConfig `toml:"exchange"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Notify   NotifyConfig   `toml:"notify"`
	Bot      BotConfig      `toml:"bot"`
}

// AppConfig drives the reconciliation core: cadence, history window and
// close thresholds. TakeProfit/StopLoss of 0 mean "disabled".
type AppConfig struct {
	Name            string  `toml:"name"`
	LogLevel        string  `toml:"log_level"`
	LogPath         string  `toml:"log_path"`
	HTTPAddr        string  `toml:"http_addr"`
	Enabled         bool    `toml:"enabled"`
	CheckIntervalMs int     `toml:"check_interval_ms"`
	HistorySize     int     `toml:"history_size"`
	TakeProfit      float64 `toml:"take_profit"`
	StopLoss        float64 `toml:"stop_loss"`
	ExpireAfterMs   int     `toml:"expire_after_ms"`
	RemoveAfterMs   int     `toml:"remove_after_ms"`
}

func (a AppConfig) CheckInterval() time.Duration {
	return time.Duration(a.CheckIntervalMs) * time.Millisecond
}

func (a AppConfig) ExpireAfter() time.Duration {
	return time.Duration(a.ExpireAfterMs) * time.Millisecond
}

func (a AppConfig) RemoveAfter() time.Duration {
	return time.Duration(a.RemoveAfterMs) * time.Millisecond
}

// ExchangeConfig describes how to reach the exchange API and how hard the
// service may hit it.
type ExchangeConfig struct {
	Name           string   `toml:"name"` // "biscoint" | "binance"
	APIURL         string   `toml:"api_url"`
	APIKey         string   `toml:"api_key"`
	APISecret      string   `toml:"api_secret"`
	Symbols        []string `toml:"symbols"` // binance backend only
	TimeoutSeconds int      `toml:"timeout_seconds"`
	MinIntervalMs  int      `toml:"min_interval_ms"`
	MaxConcurrent  int      `toml:"max_concurrent"`
}

func (e ExchangeConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

func (e ExchangeConfig) MinInterval() time.Duration {
	return time.Duration(e.MinIntervalMs) * time.Millisecond
}

// LedgerConfig describes the local trade ledger and its event outbox.
type LedgerConfig struct {
	Path          string `toml:"path"`
	OutboxPath    string `toml:"outbox_path"`
	MinIntervalMs int    `toml:"min_interval_ms"`
	MaxConcurrent int    `toml:"max_concurrent"`
}

func (l LedgerConfig) MinInterval() time.Duration {
	return time.Duration(l.MinIntervalMs) * time.Millisecond
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// BotConfig controls the Telegram command interface.
type BotConfig struct {
	Enabled        bool `toml:"enabled"`
	PollIntervalMs int  `toml:"poll_interval_ms"`
}

func (b BotConfig) PollInterval() time.Duration {
	return time.Duration(b.PollIntervalMs) * time.Millisecond
}
