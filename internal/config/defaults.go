package config

import "github.com/spf13/viper"

const (
	defaultAppName          = "bsc-arbitrage-check"
	defaultAppLogLevel      = "info"
	defaultAppHTTPAddr      = ":9981"
	defaultCheckIntervalMs  = 15000
	defaultHistorySize      = 100
	defaultExpireAfterMs    = 60000
	defaultRemoveAfterMs    = 300000
	defaultExchangeName     = "biscoint"
	defaultExchangeURL      = "https://api.biscoint.io/"
	defaultExchangeTimeout  = 15
	defaultExchangeMinMs    = 2000
	defaultLedgerPath       = "/data/db/trades.db"
	defaultLedgerOutboxPath = "/data/db/events.db"
	defaultLedgerMinMs      = 1000
	defaultMaxConcurrent    = 1
	defaultBotPollMs        = 2000
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", defaultAppName)
	v.SetDefault("app.log_level", defaultAppLogLevel)
	v.SetDefault("app.http_addr", defaultAppHTTPAddr)
	v.SetDefault("app.enabled", true)
	v.SetDefault("app.check_interval_ms", defaultCheckIntervalMs)
	v.SetDefault("app.history_size", defaultHistorySize)
	v.SetDefault("app.take_profit", 0)
	v.SetDefault("app.stop_loss", 0)
	v.SetDefault("app.expire_after_ms", defaultExpireAfterMs)
	v.SetDefault("app.remove_after_ms", defaultRemoveAfterMs)

	v.SetDefault("exchange.name", defaultExchangeName)
	v.SetDefault("exchange.api_url", defaultExchangeURL)
	v.SetDefault("exchange.timeout_seconds", defaultExchangeTimeout)
	v.SetDefault("exchange.min_interval_ms", defaultExchangeMinMs)
	v.SetDefault("exchange.max_concurrent", defaultMaxConcurrent)

	v.SetDefault("ledger.path", defaultLedgerPath)
	v.SetDefault("ledger.outbox_path", defaultLedgerOutboxPath)
	v.SetDefault("ledger.min_interval_ms", defaultLedgerMinMs)
	v.SetDefault("ledger.max_concurrent", defaultMaxConcurrent)

	v.SetDefault("notify.telegram.enabled", false)

	v.SetDefault("bot.enabled", false)
	v.SetDefault("bot.poll_interval_ms", defaultBotPollMs)
}
