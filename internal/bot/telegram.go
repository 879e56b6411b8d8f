// Package bot implements the Telegram command interface: a small set of
// operator commands to pause, resume and inspect the reconciliation service.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lzkill/bsc-arbitrage-check/internal/config"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/notifier"
	"github.com/lzkill/bsc-arbitrage-check/internal/logger"
	"github.com/lzkill/bsc-arbitrage-check/internal/scheduler"
)

// Bot long-polls the Telegram API and reacts to commands from the
// configured chat. Messages from any other chat are ignored.
type Bot struct {
	cfg    *config.Config
	sw     *scheduler.Switch
	sender notifier.TextNotifier
	client *http.Client
	poll   time.Duration
	offset int64
}

func New(cfg *config.Config, sw *scheduler.Switch, sender notifier.TextNotifier) *Bot {
	poll := cfg.Bot.PollInterval()
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &Bot{
		cfg:    cfg,
		sw:     sw,
		sender: sender,
		client: &http.Client{Timeout: 35 * time.Second},
		poll:   poll,
	}
}

// Run polls until ctx is cancelled. Poll failures are logged and retried on
// the next tick; they never stop the loop.
func (b *Bot) Run(ctx context.Context) error {
	b.send(formatWelcomeMessage(b.cfg.App.Name))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.poll):
		}
		if err := b.pollOnce(ctx); err != nil {
			logger.Warnf("bot poll failed: %v", err)
		}
	}
}

func (b *Bot) pollOnce(ctx context.Context) error {
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/getUpdates", b.cfg.Notify.Telegram.BotToken)
	params := url.Values{}
	params.Set("timeout", "25")
	if b.offset > 0 {
		params.Set("offset", strconv.FormatInt(b.offset, 10))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if !gjson.GetBytes(body, "ok").Bool() {
		return fmt.Errorf("telegram getUpdates not ok: %s", gjson.GetBytes(body, "description").String())
	}
	for _, update := range gjson.GetBytes(body, "result").Array() {
		b.offset = update.Get("update_id").Int() + 1
		chatID := update.Get("message.chat.id").String()
		if chatID != strings.TrimSpace(b.cfg.Notify.Telegram.ChatID) {
			continue
		}
		b.handleCommand(update.Get("message.text").String())
	}
	return nil
}

func (b *Bot) handleCommand(text string) {
	command, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	command, _, _ = strings.Cut(command, "@")
	switch command {
	case "/bak_start":
		b.send(formatWelcomeMessage(b.cfg.App.Name))
	case "/bak_enable":
		b.sw.Enable()
		logger.Infof("service enabled via bot command")
		b.send(formatServiceEnabledMessage())
	case "/bak_disable":
		b.sw.Disable()
		logger.Infof("service disabled via bot command")
		b.send(formatServiceDisabledMessage())
	case "/bak_config":
		b.send(formatConfigMessage(*b.cfg))
	case "/bak_ping":
		b.send(formatPingMessage())
	case "/bak_help":
		b.send(formatHelpMessage())
	}
}

func (b *Bot) send(text string) {
	if b.sender == nil {
		return
	}
	if err := b.sender.SendText(text); err != nil {
		logger.Warnf("bot reply failed: %v", err)
	}
}
