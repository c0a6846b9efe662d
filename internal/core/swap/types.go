package swap

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a swap operation as reported by the
// status provider. The set of values is provider-defined; the aggregation
// core only ever asks "is this status in the pending subset" via StatusSet.
type Status string

// Known provider statuses. pending/onhold/expired are non-terminal,
// finished/refused are terminal.
const (
	StatusPending  Status = "pending"
	StatusOnHold   Status = "onhold"
	StatusExpired  Status = "expired"
	StatusFinished Status = "finished"
	StatusRefused  Status = "refused"
)

// Operation is the atomic unit of the system: one currency-exchange
// transaction with a lifecycle status.
//
// An Operation is an immutable value. A status refresh never mutates an
// existing Operation in place; it produces a replacement value carrying the
// same SwapID.
type Operation struct {
	// SwapID is the provider-assigned identity of the swap. It is unique
	// across all accounts; if two accounts ever report the same id the
	// last-merged value wins.
	SwapID string `json:"swap_id"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Timestamp is when the swap was initiated. It drives day bucketing and
	// chronological ordering within a day.
	Timestamp time.Time `json:"timestamp"`

	// Descriptive payload, passed through to consumers unchanged.
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToAmount     decimal.Decimal `json:"to_amount"`

	// AccountID references the owning account. Lookup only, no ownership.
	AccountID string `json:"account_id"`
}

// Validate ensures the operation carries the attributes the aggregation
// core relies on. A zero Timestamp would land in an undefined day bucket,
// so it is rejected at the load/refresh boundary rather than deep inside
// the aggregator.
func (o *Operation) Validate() error {
	if o.SwapID == "" {
		return fmt.Errorf("swap_id is required")
	}
	if o.Status == "" {
		return fmt.Errorf("status is required")
	}
	if o.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if o.AccountID == "" {
		return fmt.Errorf("account_id is required")
	}
	return nil
}

// Account is a snapshot of one account and its swap operations, supplied
// by the external account provider. Accounts are immutable: a refresh
// produces a new Account value, never an in-place update.
type Account struct {
	ID         string      `json:"id"`
	Name       string      `json:"name,omitempty"`
	Operations []Operation `json:"operations"`
}

// Validate checks the account snapshot and every operation in it.
func (a *Account) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("account id is required")
	}
	for i := range a.Operations {
		if err := a.Operations[i].Validate(); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}
