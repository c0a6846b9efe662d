package history

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/swaplab/swap-history/internal/core/swap"
)

func op(swapID, accountID string, status swap.Status, ts time.Time) swap.Operation {
	return swap.Operation{
		SwapID:       swapID,
		Status:       status,
		Timestamp:    ts,
		FromCurrency: "BTC",
		ToCurrency:   "ETH",
		FromAmount:   decimal.NewFromInt(1),
		ToAmount:     decimal.NewFromInt(15),
		AccountID:    accountID,
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	require.Nil(t, Aggregate(nil, time.UTC))
	require.Nil(t, Aggregate([]swap.Account{}, time.UTC))
	require.Nil(t, Aggregate([]swap.Account{{ID: "a1"}}, time.UTC))
}

func TestAggregate_BucketsByCalendarDay(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)

	accounts := []swap.Account{
		{ID: "a1", Operations: []swap.Operation{
			op("s1", "a1", swap.StatusFinished, day1),
			op("s2", "a1", swap.StatusPending, day2),
		}},
		{ID: "a2", Operations: []swap.Operation{
			op("s3", "a2", swap.StatusFinished, day1.Add(2 * time.Hour)),
		}},
	}

	h := Aggregate(accounts, time.UTC)
	require.Len(t, h, 2)

	// Most recent day first.
	require.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), h[0].Day)
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), h[1].Day)

	require.Len(t, h[0].Data, 1)
	require.Equal(t, "s2", h[0].Data[0].SwapID)

	// Within a day: newest first.
	require.Len(t, h[1].Data, 2)
	require.Equal(t, "s3", h[1].Data[0].SwapID)
	require.Equal(t, "s1", h[1].Data[1].SwapID)
}

func TestAggregate_TieBreaksBySwapID(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	accounts := []swap.Account{
		{ID: "a1", Operations: []swap.Operation{
			op("s-b", "a1", swap.StatusFinished, ts),
			op("s-a", "a1", swap.StatusFinished, ts),
			op("s-c", "a1", swap.StatusFinished, ts),
		}},
	}

	h := Aggregate(accounts, time.UTC)
	require.Len(t, h, 1)
	require.Equal(t, "s-a", h[0].Data[0].SwapID)
	require.Equal(t, "s-b", h[0].Data[1].SwapID)
	require.Equal(t, "s-c", h[0].Data[2].SwapID)
}

func TestAggregate_Idempotent(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	accounts := []swap.Account{
		swap.GenerateAccount("a1", 7, base),
		swap.GenerateAccount("a2", 3, base.Add(30*time.Hour)),
	}

	first := Aggregate(accounts, time.UTC)
	second := Aggregate(accounts, time.UTC)
	require.Equal(t, first, second)
	require.Equal(t, 10, first.OperationCount())
}

func TestDayOf_MidnightBoundary(t *testing.T) {
	// 23:59:59.999 and 00:00:00 the next day land in different buckets.
	before := time.Date(2026, 3, 10, 23, 59, 59, 999_000_000, time.UTC)
	after := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), DayOf(before, time.UTC))
	require.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), DayOf(after, time.UTC))
}

func TestDayOf_RespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)

	// 22:30 UTC is already the next calendar day at UTC+3.
	ts := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, loc), DayOf(ts, loc))
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), DayOf(ts, time.UTC))
}
