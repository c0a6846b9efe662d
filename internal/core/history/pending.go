package history

import (
	"github.com/swaplab/swap-history/internal/core/swap"
)

// HasPending reports whether any operation in the history has a status from
// the pending set. It runs on every poll tick, so it is a plain linear scan
// that short-circuits on the first match.
func HasPending(h History, pending swap.StatusSet) bool {
	for _, section := range h {
		for _, op := range section.Data {
			if pending.Contains(op.Status) {
				return true
			}
		}
	}
	return false
}
