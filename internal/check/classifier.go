package check

import (
	"time"

	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

// Outcome is the per-cycle classification of a pending trade against the
// exchange's recent execution history.
type Outcome int

const (
	// OutcomePending: nothing conclusive yet, re-stamp checkedAt only.
	OutcomePending Outcome = iota
	// OutcomeMissed: the open leg never filled and its offer expired past
	// the removal grace window. The trade is abandoned.
	OutcomeMissed
	// OutcomeBroken: the open leg filled but the close leg did not, and the
	// close offer (if any) expired past its grace window.
	OutcomeBroken
	// OutcomeClosed: both legs filled.
	OutcomeClosed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMissed:
		return "missed"
	case OutcomeBroken:
		return "broken"
	case OutcomeClosed:
		return "closed"
	default:
		return "pending"
	}
}

// Grace holds the expiry grace windows. ExpireAfter guards broken detection
// on the close leg; RemoveAfter guards missed-trade abandonment on the open
// leg. They may legitimately differ.
type Grace struct {
	ExpireAfter time.Duration
	RemoveAfter time.Duration
}

// ExecutionIndex maps exchange offer ids to their executions.
type ExecutionIndex map[string]types.Execution

// BuildExecutionIndex indexes a history window by offer id. Later entries
// win on duplicate ids, matching the newest fill.
func BuildExecutionIndex(execs []types.Execution) ExecutionIndex {
	idx := make(ExecutionIndex, len(execs))
	for _, e := range execs {
		if e.OfferID == "" {
			continue
		}
		idx[e.OfferID] = e
	}
	return idx
}

// Lookup returns the execution for an offer, tolerating nil offers.
func (idx ExecutionIndex) Lookup(o *types.Offer) (types.Execution, bool) {
	if o == nil {
		return types.Execution{}, false
	}
	e, ok := idx[o.OfferID]
	return e, ok
}

// Classify resolves one trade against a fixed history snapshot. It is pure
// and idempotent: the same (trade, index, now) always yields the same
// outcome. Persisting the result is the engine's job.
func Classify(t types.Trade, idx ExecutionIndex, now time.Time, g Grace) Outcome {
	_, openExecuted := idx[t.OpenOffer.OfferID]
	_, closeExecuted := idx.Lookup(t.CloseOffer)

	switch {
	case openExecuted && closeExecuted:
		return OutcomeClosed
	case !openExecuted:
		if t.Status == types.TradeOpen && t.OpenOffer.ExpiredFor(now, g.RemoveAfter) {
			return OutcomeMissed
		}
		return OutcomePending
	case t.Status == types.TradeBroken:
		// Already broken: stays broken until the close leg confirms.
		return OutcomeBroken
	case t.CloseOffer == nil || t.CloseOffer.ExpiredFor(now, g.ExpireAfter):
		return OutcomeBroken
	default:
		return OutcomePending
	}
}
