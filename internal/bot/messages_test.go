package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lzkill/bsc-arbitrage-check/internal/config"
)

func TestFormatConfigMessage_MasksSecrets(t *testing.T) {
	cfg := config.Config{}
	cfg.App.Name = "checker"
	cfg.Exchange.APIKey = "super-secret-key"
	cfg.Exchange.APISecret = "super-secret-value"
	cfg.Notify.Telegram.BotToken = "123456:ABCDEF"

	msg := formatConfigMessage(cfg)
	assert.Contains(t, msg, "checker")
	assert.NotContains(t, msg, "super-secret-key")
	assert.NotContains(t, msg, "super-secret-value")
	assert.NotContains(t, msg, "123456:ABCDEF")
	assert.Contains(t, msg, "supe****")
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", mask(""))
	assert.Equal(t, "****", mask("abcd"))
	assert.Equal(t, "abcd****", mask("abcdef"))
}

func TestFormatMessages(t *testing.T) {
	assert.Contains(t, formatWelcomeMessage("checker"), "<b>checker</b>")
	assert.Contains(t, formatHelpMessage(), "/bak_enable")
	assert.Equal(t, "❕Service enabled", formatServiceEnabledMessage())
	assert.Equal(t, "❕Service disabled", formatServiceDisabledMessage())
	assert.Equal(t, "❕Pong", formatPingMessage())
}
