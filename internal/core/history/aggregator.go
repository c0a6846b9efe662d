package history

import (
	"sort"
	"time"

	"github.com/swaplab/swap-history/internal/core/swap"
)

// Section groups the swap operations of one calendar day for display
// ordering. Data is sorted newest-first.
type Section struct {
	// Day is midnight of the bucket's calendar day in the location the
	// history was aggregated with.
	Day time.Time `json:"day"`

	Data []swap.Operation `json:"data"`
}

// History is the fully aggregated view: sections sorted by day descending,
// most recent day first. It is a derived value, rebuilt wholesale on every
// aggregation pass and never patched incrementally.
//
// A nil History means "no data yet"; an empty account set aggregates to nil,
// which callers can distinguish from a loaded-but-empty state themselves.
type History []Section

// DayOf truncates t to midnight of its calendar day in loc. The location is
// fixed per deployment (config history.timezone) so bucket boundaries near
// midnight are stable.
func DayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// Aggregate flattens every operation from every account into one
// day-sectioned History.
//
// Within a day, operations are ordered timestamp-descending; ties break by
// SwapID ascending so the result is deterministic. Days are ordered
// descending. The result is a fresh value each call: Aggregate is pure and
// idempotent, structurally identical output for identical input.
func Aggregate(accounts []swap.Account, loc *time.Location) History {
	buckets := make(map[time.Time][]swap.Operation)
	for _, account := range accounts {
		for _, op := range account.Operations {
			day := DayOf(op.Timestamp, loc)
			buckets[day] = append(buckets[day], op)
		}
	}
	if len(buckets) == 0 {
		return nil
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	result := make(History, 0, len(days))
	for _, day := range days {
		ops := buckets[day]
		sort.Slice(ops, func(i, j int) bool {
			if !ops[i].Timestamp.Equal(ops[j].Timestamp) {
				return ops[i].Timestamp.After(ops[j].Timestamp)
			}
			return ops[i].SwapID < ops[j].SwapID
		})
		result = append(result, Section{Day: day, Data: ops})
	}
	return result
}

// OperationCount returns the total number of operations across all sections.
func (h History) OperationCount() int {
	total := 0
	for _, section := range h {
		total += len(section.Data)
	}
	return total
}
