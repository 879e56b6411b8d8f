// Package check implements the trade reconciliation core: the close decision
// policy, the per-trade classifier and the engine that drives one
// reconciliation cycle against the ledger and the exchange.
package check

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/broker"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/exchange"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/ledger"
	"github.com/lzkill/bsc-arbitrage-check/internal/logger"
	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

// Params are the knobs of one engine instance, fixed at startup.
type Params struct {
	HistorySize int
	TakeProfit  float64 // percent, 0 disables
	StopLoss    float64 // percent, 0 disables
	Grace       Grace
}

// Engine reconciles locally persisted trades against the exchange. One
// RunCycle call processes every currently pending trade exactly once; the
// scheduler guarantees cycles never overlap.
type Engine struct {
	ledger   ledger.Store
	exchange exchange.Gateway
	broker   broker.Publisher
	params   Params
	nowFn    func() time.Time
}

func NewEngine(l ledger.Store, x exchange.Gateway, b broker.Publisher, params Params) *Engine {
	if params.HistorySize <= 0 {
		params.HistorySize = 100
	}
	return &Engine{
		ledger:   l,
		exchange: x,
		broker:   b,
		params:   params,
		nowFn:    time.Now,
	}
}

// RunCycle performs one reconciliation pass and returns how many trades it
// processed. Failures on individual trades or close groups are logged and
// isolated; only a failure to read the pending set or the history window
// aborts the cycle.
func (e *Engine) RunCycle(ctx context.Context) (int, error) {
	pending, err := e.ledger.ListPendingTrades(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending trades: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	execs, err := e.exchange.RecentTrades(ctx, e.params.HistorySize)
	if err != nil {
		return 0, fmt.Errorf("fetch trade history: %w", err)
	}
	idx := BuildExecutionIndex(execs)

	var open, broken []types.Trade
	for _, t := range pending {
		switch t.Status {
		case types.TradeBroken:
			broken = append(broken, t)
		case types.TradeOpen:
			open = append(open, t)
		default:
			logger.Warnf("trade %s has non-pending status %s, skipping", t.ID, t.Status)
		}
	}

	processed := 0
	processed += e.handleBrokenTrades(ctx, broken, idx)
	processed += e.handleOpenTrades(ctx, open, idx)
	return processed, nil
}

// handleBrokenTrades finalizes broken trades whose close leg has since
// executed and attempts a single aggregated close per base asset for the
// rest. Groups run concurrently; each group's failure is isolated.
func (e *Engine) handleBrokenTrades(ctx context.Context, trades []types.Trade, idx ExecutionIndex) int {
	if len(trades) == 0 {
		return 0
	}
	groups := make(map[string][]types.Trade)
	for _, t := range trades {
		groups[t.OpenOffer.Base] = append(groups[t.OpenOffer.Base], t)
	}
	bases := make([]string, 0, len(groups))
	for base := range groups {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	var eg errgroup.Group
	for _, base := range bases {
		base := base
		group := groups[base]
		eg.Go(func() error {
			if err := e.closeGroup(ctx, base, group, idx); err != nil {
				logger.Errorf("close group %s (%d trades): %v", base, len(group), err)
			}
			return nil
		})
	}
	eg.Wait()

	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}

// closeGroup drives the broken → closed path for all broken trades sharing a
// base asset. The reference price is the aggregate break-even across the
// group, not each trade's own entry price: one large close fills cheaper
// than many small ones.
func (e *Engine) closeGroup(ctx context.Context, base string, group []types.Trade, idx ExecutionIndex) error {
	remaining := make([]types.Trade, 0, len(group))
	for _, t := range group {
		if Classify(t, idx, e.nowFn().UTC(), e.params.Grace) == OutcomeClosed {
			if err := e.finalizeClosed(ctx, t, idx); err != nil {
				logger.Errorf("finalize closed trade %s: %v", t.ID, err)
			}
			continue
		}
		// The close leg executed but the open fill rolled out of the finite
		// history window. Never re-quote over an executed close offer; wait
		// for the open execution to reappear or for manual repair.
		if _, ok := idx.Lookup(t.CloseOffer); ok {
			logger.Warnf("trade %s has an executed close offer %s but no open execution in the history window, skipping",
				t.ID, t.CloseOffer.OfferID)
			continue
		}
		remaining = append(remaining, t)
	}
	if len(remaining) == 0 {
		return nil
	}

	totalBase := decimal.Zero
	totalQuote := decimal.Zero
	for _, t := range remaining {
		totalBase = totalBase.Add(t.OpenOffer.BaseAmount)
		totalQuote = totalQuote.Add(t.OpenOffer.QuoteAmount)
	}
	if totalBase.Sign() <= 0 {
		return fmt.Errorf("group %s: non-positive aggregate base amount: %w", base, ErrInconsistentState)
	}
	breakEven := totalQuote.Div(totalBase)

	closeOffer, err := e.exchange.Quote(ctx, exchange.QuoteRequest{
		Base:   base,
		Amount: totalBase,
		Op:     types.OfferOpSell,
	})
	if err != nil {
		if errors.Is(err, exchange.ErrQuoteRejected) {
			logger.Warnf("close quote rejected for %s, retrying next cycle: %v", base, err)
			return nil
		}
		return fmt.Errorf("close quote for %s: %w", base, err)
	}

	ok, err := CanClose(breakEven, closeOffer.EfPrice, e.params.TakeProfit, e.params.StopLoss)
	if err != nil {
		return err
	}
	if !ok {
		logger.Debugf("group %s not closable yet: breakEven=%s quote=%s", base, breakEven, closeOffer.EfPrice)
		return nil
	}

	// One aggregated close offer is fanned out to every member trade; the
	// confirm event carries the shared offer once per group.
	hasSiblings := len(remaining) > 1
	now := e.nowFn().UTC()
	persisted := 0
	for _, t := range remaining {
		co := *closeOffer
		if t.CloseOffer != nil {
			co.ID = t.CloseOffer.ID
		} else {
			co.ID = uuid.New()
		}
		if err := e.persistClose(ctx, t, co, hasSiblings, now); err != nil {
			logger.Errorf("persist close offer for trade %s: %v", t.ID, err)
			continue
		}
		persisted++
	}
	if persisted == 0 {
		return nil
	}
	e.publishConfirm(ctx, base, *closeOffer)
	return nil
}

func (e *Engine) publishConfirm(ctx context.Context, base string, offer types.Offer) {
	if e.broker == nil {
		return
	}
	err := e.broker.Publish(ctx, broker.TopicConfirm, broker.ConfirmPayload{Offers: []any{offer}})
	if err != nil {
		logger.Warnf("publish close confirmation for %s: %v", base, err)
	}
}

// persistClose writes the accepted close offer and the trade row, offers
// first so a crash between the two writes is recoverable.
func (e *Engine) persistClose(ctx context.Context, t types.Trade, co types.Offer, hasSiblings bool, now time.Time) error {
	if t.CloseOffer == nil {
		if _, err := e.ledger.CreateOffer(ctx, co); err != nil {
			return err
		}
	} else if err := e.ledger.UpdateOffer(ctx, co); err != nil {
		return err
	}
	t.CloseOffer = &co
	t.HasSiblings = hasSiblings
	t.CheckedAt = &now
	return e.ledger.UpdateTrade(ctx, t)
}

// handleOpenTrades classifies every open trade against the history snapshot
// and acts on the outcome. Per-trade failures are logged and skipped.
func (e *Engine) handleOpenTrades(ctx context.Context, trades []types.Trade, idx ExecutionIndex) int {
	n := 0
	for _, t := range trades {
		if err := e.reconcileOpenTrade(ctx, t, idx); err != nil {
			logger.Errorf("reconcile trade %s: %v", t.ID, err)
		}
		n++
	}
	return n
}

func (e *Engine) reconcileOpenTrade(ctx context.Context, t types.Trade, idx ExecutionIndex) error {
	now := e.nowFn().UTC()
	switch Classify(t, idx, now, e.params.Grace) {
	case OutcomeMissed:
		// Never filled and past the removal grace window: abandon it.
		logger.Infof("trade %s missed (open offer %s expired), removing", t.ID, t.OpenOffer.OfferID)
		return e.ledger.RemoveTrade(ctx, t)

	case OutcomeBroken:
		t.Status = types.TradeBroken
		t.CheckedAt = &now
		if err := e.ledger.UpdateTrade(ctx, t); err != nil {
			return err
		}
		// First entry into broken: notify exactly once, guarded by the
		// prior status. Delivery downstream is still at-least-once.
		e.notify(ctx, broker.EventTradeBroken, t)
		return nil

	case OutcomeClosed:
		return e.finalizeClosed(ctx, t, idx)

	default:
		t.CheckedAt = &now
		return e.ledger.UpdateTrade(ctx, t)
	}
}

// finalizeClosed stamps both legs with their execution timestamps and moves
// the trade to closed.
func (e *Engine) finalizeClosed(ctx context.Context, t types.Trade, idx ExecutionIndex) error {
	openExec, okOpen := idx[t.OpenOffer.OfferID]
	closeExec, okClose := idx.Lookup(t.CloseOffer)
	if !okOpen || !okClose || t.CloseOffer == nil {
		return fmt.Errorf("trade %s classified closed without both executions: %w", t.ID, ErrInconsistentState)
	}
	now := e.nowFn().UTC()

	openAt := openExec.ExecutedAt
	t.OpenOffer.ConfirmedAt = &openAt
	if err := e.ledger.UpdateOffer(ctx, t.OpenOffer); err != nil {
		return err
	}
	closeAt := closeExec.ExecutedAt
	t.CloseOffer.ConfirmedAt = &closeAt
	if err := e.ledger.UpdateOffer(ctx, *t.CloseOffer); err != nil {
		return err
	}

	t.Status = types.TradeClosed
	t.CheckedAt = &now
	if err := e.ledger.UpdateTrade(ctx, t); err != nil {
		return err
	}
	logger.Infof("trade %s closed (open=%s close=%s)", t.ID, t.OpenOffer.OfferID, t.CloseOffer.OfferID)
	e.notify(ctx, broker.EventTradeClosed, t)
	return nil
}

func (e *Engine) notify(ctx context.Context, event broker.Event, t types.Trade) {
	if e.broker == nil {
		return
	}
	err := e.broker.Publish(ctx, broker.TopicNotify, broker.NotifyPayload{Event: event, Payload: t})
	if err != nil {
		logger.Warnf("publish %s for trade %s: %v", event, t.ID, err)
	}
}
