package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Exchange.validate(); err != nil {
		return err
	}
	if err := c.Ledger.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	if c.Bot.Enabled && !c.Notify.Telegram.Enabled {
		return fmt.Errorf("bot.enabled requires notify.telegram.enabled")
	}
	return nil
}

func (a AppConfig) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("app.name cannot be empty")
	}
	if a.CheckIntervalMs <= 0 {
		return fmt.Errorf("app.check_interval_ms must be > 0")
	}
	if a.HistorySize <= 0 {
		return fmt.Errorf("app.history_size must be > 0")
	}
	if a.TakeProfit < 0 {
		return fmt.Errorf("app.take_profit must be >= 0 (0 disables)")
	}
	if a.StopLoss < 0 {
		return fmt.Errorf("app.stop_loss must be >= 0 (0 disables)")
	}
	if a.ExpireAfterMs < 0 || a.RemoveAfterMs < 0 {
		return fmt.Errorf("app expiry grace windows must be >= 0")
	}
	return nil
}

func (e ExchangeConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(e.Name)) {
	case "biscoint":
		if strings.TrimSpace(e.APIURL) == "" {
			return fmt.Errorf("exchange.api_url cannot be empty")
		}
		if strings.TrimSpace(e.APIKey) == "" || strings.TrimSpace(e.APISecret) == "" {
			return fmt.Errorf("exchange.api_key and exchange.api_secret are required")
		}
	case "binance":
		if len(e.Symbols) == 0 {
			return fmt.Errorf("exchange.symbols is required for the binance backend")
		}
	default:
		return fmt.Errorf("unsupported exchange: %s", e.Name)
	}
	if e.TimeoutSeconds <= 0 {
		return fmt.Errorf("exchange.timeout_seconds must be > 0")
	}
	if e.MinIntervalMs < 0 {
		return fmt.Errorf("exchange.min_interval_ms must be >= 0")
	}
	return nil
}

func (l LedgerConfig) validate() error {
	if strings.TrimSpace(l.Path) == "" {
		return fmt.Errorf("ledger.path cannot be empty")
	}
	if l.MinIntervalMs < 0 {
		return fmt.Errorf("ledger.min_interval_ms must be >= 0")
	}
	return nil
}

func (n NotifyConfig) validate() error {
	if !n.Telegram.Enabled {
		return nil
	}
	if strings.TrimSpace(n.Telegram.BotToken) == "" || strings.TrimSpace(n.Telegram.ChatID) == "" {
		return fmt.Errorf("notify.telegram requires bot_token and chat_id")
	}
	return nil
}
