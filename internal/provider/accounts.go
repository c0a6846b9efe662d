package provider

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/swaplab/swap-history/internal/core/swap"
	"gopkg.in/yaml.v3"
)

// Account seed file shape. Amounts are kept as strings in the file and
// parsed to decimals here, so no float conversion ever touches them.
type accountsFile struct {
	Accounts []accountSeed `yaml:"accounts"`
}

type accountSeed struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Operations []operationSeed `yaml:"operations"`
}

type operationSeed struct {
	SwapID       string    `yaml:"swap_id"`
	Status       string    `yaml:"status"`
	Timestamp    time.Time `yaml:"timestamp"`
	FromCurrency string    `yaml:"from_currency"`
	ToCurrency   string    `yaml:"to_currency"`
	FromAmount   string    `yaml:"from_amount"`
	ToAmount     string    `yaml:"to_amount"`
}

// LoadAccounts reads the account provider's seed file (YAML) and validates
// every snapshot in it. This is the pull-based account input: the file is
// the collaborator that decides which accounts exist.
func LoadAccounts(path string) ([]swap.Account, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}

	var f accountsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse accounts file: %w", err)
	}

	accounts := make([]swap.Account, 0, len(f.Accounts))
	for _, seed := range f.Accounts {
		account, err := seed.toAccount()
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", seed.ID, err)
		}
		if err := account.Validate(); err != nil {
			return nil, fmt.Errorf("account %q: %w", seed.ID, err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s accountSeed) toAccount() (swap.Account, error) {
	ops := make([]swap.Operation, 0, len(s.Operations))
	for _, op := range s.Operations {
		fromAmount, err := decimal.NewFromString(op.FromAmount)
		if err != nil {
			return swap.Account{}, fmt.Errorf("swap %q: invalid from_amount %q: %w", op.SwapID, op.FromAmount, err)
		}
		toAmount, err := decimal.NewFromString(op.ToAmount)
		if err != nil {
			return swap.Account{}, fmt.Errorf("swap %q: invalid to_amount %q: %w", op.SwapID, op.ToAmount, err)
		}
		ops = append(ops, swap.Operation{
			SwapID:       op.SwapID,
			Status:       swap.Status(op.Status),
			Timestamp:    op.Timestamp,
			FromCurrency: op.FromCurrency,
			ToCurrency:   op.ToCurrency,
			FromAmount:   fromAmount,
			ToAmount:     toAmount,
			AccountID:    s.ID,
		})
	}
	return swap.Account{ID: s.ID, Name: s.Name, Operations: ops}, nil
}
