package check

import "errors"

// ErrInconsistentState marks a trade whose ledger records contradict each
// other (e.g. a referenced offer is missing). The trade is skipped and left
// for manual intervention; it is never retried automatically.
var ErrInconsistentState = errors.New("check: inconsistent ledger state")
