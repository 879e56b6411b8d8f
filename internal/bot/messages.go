package bot

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lzkill/bsc-arbitrage-check/internal/config"
)

func formatWelcomeMessage(name string) string {
	return fmt.Sprintf("💵 Welcome to the %s service!", bold(name))
}

func formatHelpMessage() string {
	return `💡 ` + bold("Available commands:") + `

- /bak_start nothing really useful
- /bak_enable enable the service
- /bak_disable disable the service
- /bak_config get the service config
- /bak_ping pong back
- /bak_help show this message`
}

func formatServiceEnabledMessage() string {
	return formatGeneralInfoMessage("Service enabled")
}

func formatServiceDisabledMessage() string {
	return formatGeneralInfoMessage("Service disabled")
}

func formatPingMessage() string {
	return formatGeneralInfoMessage("Pong")
}

func formatGeneralInfoMessage(message string) string {
	return "❕" + message
}

func bold(text string) string {
	return "<b>" + text + "</b>"
}

// formatConfigMessage renders the running config as YAML with secrets
// masked.
func formatConfigMessage(cfg config.Config) string {
	cfg.Exchange.APIKey = mask(cfg.Exchange.APIKey)
	cfg.Exchange.APISecret = mask(cfg.Exchange.APISecret)
	cfg.Notify.Telegram.BotToken = mask(cfg.Notify.Telegram.BotToken)
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return formatGeneralInfoMessage("config unavailable: " + err.Error())
	}
	return "<pre>" + string(out) + "</pre>"
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
