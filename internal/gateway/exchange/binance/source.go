// Package binance implements the exchange gateway on the Binance spot API
// via the go-binance SDK. Binance has no native quote-offer primitive, so
// Quote synthesizes a short-lived offer from the current average price.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lzkill/bsc-arbitrage-check/internal/config"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/exchange"
	"github.com/lzkill/bsc-arbitrage-check/internal/pkg/retry"
	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

// Offers synthesized from average prices stay executable this long.
const quoteValidity = 15 * time.Second

type pair struct {
	base   string
	quote  string
	symbol string // binance notation, e.g. BTCBRL
}

// Source adapts the Binance spot API to the exchange gateway contract.
type Source struct {
	client *gobinance.Client
	pairs  []pair
	nowFn  func() time.Time
}

var _ exchange.Gateway = (*Source)(nil)

// New builds a Source for the configured symbols ("BASE/QUOTE" notation).
func New(cfg config.ExchangeConfig) (*Source, error) {
	if len(cfg.Symbols) == 0 {
		return nil, fmt.Errorf("binance source requires at least one symbol")
	}
	pairs := make([]pair, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		base, quote, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(s)), "/")
		if !ok || base == "" || quote == "" {
			return nil, fmt.Errorf("invalid symbol %q, expected BASE/QUOTE", s)
		}
		pairs = append(pairs, pair{base: base, quote: quote, symbol: base + quote})
	}
	client := gobinance.NewClient(cfg.APIKey, cfg.APISecret)
	if url := strings.TrimSpace(cfg.APIURL); url != "" {
		client.BaseURL = url
	}
	return &Source{client: client, pairs: pairs, nowFn: time.Now}, nil
}

func (s *Source) Name() string { return "binance" }

// RecentTrades collects the account's recent fills across all configured
// symbols, oldest first. The order id stands in for the offer id.
func (s *Source) RecentTrades(ctx context.Context, limit int) ([]types.Execution, error) {
	var execs []types.Execution
	for _, p := range s.pairs {
		trades, err := s.client.NewListTradesService().Symbol(p.symbol).Limit(limit).Do(ctx)
		if err != nil {
			return nil, retry.Transient(fmt.Errorf("binance trades %s: %w", p.symbol, err))
		}
		for _, t := range trades {
			execs = append(execs, types.Execution{
				OfferID:    strconv.FormatInt(t.OrderID, 10),
				ExecutedAt: time.UnixMilli(t.Time).UTC(),
			})
		}
	}
	return execs, nil
}

// Quote synthesizes an offer at the pair's current average price.
func (s *Source) Quote(ctx context.Context, req exchange.QuoteRequest) (*types.Offer, error) {
	p, err := s.pairFor(req.Base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", exchange.ErrQuoteRejected, err)
	}
	avg, err := s.client.NewAveragePriceService().Symbol(p.symbol).Do(ctx)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("binance avg price %s: %w", p.symbol, err))
	}
	price, err := decimal.NewFromString(avg.Price)
	if err != nil {
		return nil, fmt.Errorf("binance avg price %s: bad price %q: %w", p.symbol, avg.Price, err)
	}
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive price for %s", exchange.ErrQuoteRejected, p.symbol)
	}

	now := s.nowFn().UTC()
	baseAmount := req.Amount
	quoteAmount := baseAmount.Mul(price)
	if req.IsQuote {
		quoteAmount = req.Amount
		baseAmount = quoteAmount.Div(price)
	}
	return &types.Offer{
		ID:          uuid.New(),
		OfferID:     uuid.NewString(),
		Op:          req.Op,
		Base:        p.base,
		Quote:       p.quote,
		BaseAmount:  baseAmount,
		QuoteAmount: quoteAmount,
		EfPrice:     price,
		IsQuote:     req.IsQuote,
		CreatedAt:   now,
		ExpiresAt:   now.Add(quoteValidity),
	}, nil
}

func (s *Source) pairFor(base string) (pair, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	for _, p := range s.pairs {
		if p.base == base {
			return p, nil
		}
	}
	return pair{}, fmt.Errorf("no configured symbol for base %s", base)
}
