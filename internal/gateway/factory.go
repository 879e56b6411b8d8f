package gateway

import (
	"fmt"
	"strings"

	"github.com/lzkill/bsc-arbitrage-check/internal/config"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/exchange"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/exchange/binance"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/exchange/biscoint"
)

// NewExchangeFromConfig selects the exchange backend.
func NewExchangeFromConfig(cfg *config.Config) (exchange.Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	name := strings.ToLower(strings.TrimSpace(cfg.Exchange.Name))
	switch name {
	case "", "biscoint":
		return biscoint.NewClient(cfg.Exchange)
	case "binance":
		return binance.New(cfg.Exchange)
	default:
		return nil, fmt.Errorf("unsupported exchange: %s", cfg.Exchange.Name)
	}
}
