package swap

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var generatorPairs = [][2]string{
	{"BTC", "ETH"},
	{"ETH", "USDT"},
	{"SOL", "BTC"},
	{"ADA", "ETH"},
	{"DOT", "USDT"},
}

// GenerateOperations produces count synthetic operations for accountID,
// spaced one hour apart going back from base. Used by tests and by the
// sample seed tooling; statuses cycle through the known set.
func GenerateOperations(accountID string, count int, base time.Time) []Operation {
	statuses := []Status{StatusPending, StatusFinished, StatusOnHold, StatusRefused, StatusExpired}

	ops := make([]Operation, count)
	for i := 0; i < count; i++ {
		pair := generatorPairs[i%len(generatorPairs)]
		ops[i] = Operation{
			SwapID:       uuid.New().String(),
			Status:       statuses[i%len(statuses)],
			Timestamp:    base.Add(-time.Duration(i) * time.Hour),
			FromCurrency: pair[0],
			ToCurrency:   pair[1],
			FromAmount:   decimal.NewFromInt(int64(1 + i%10)),
			ToAmount:     decimal.NewFromInt(int64(100 + i*10)),
			AccountID:    accountID,
		}
	}
	return ops
}

// GenerateAccount produces a synthetic account with count operations.
func GenerateAccount(accountID string, count int, base time.Time) Account {
	return Account{
		ID:         accountID,
		Name:       "Account " + accountID,
		Operations: GenerateOperations(accountID, count, base),
	}
}
