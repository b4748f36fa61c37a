package accounting

import (
	"fmt"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferBalances returns the post-transfer balances of source and destination.
// It refuses to produce a negative source balance.
func TransferBalances(source, destination decimal.Decimal, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer amount must be positive, got %s", amount)
	}
	newSource := source.Sub(amount)
	if newSource.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("source balance %s cannot cover %s", source, amount)
	}
	return newSource, destination.Add(amount), nil
}

// BalanceChanges builds the signed per-account deltas of one transfer.
func BalanceChanges(sourceID, destinationID string, amount decimal.Decimal) map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		sourceID:      amount.Neg(),
		destinationID: amount,
	}
}

// SumBalances adds up the balances of the given accounts.
func SumBalances(accounts []domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, acc := range accounts {
		total = total.Add(acc.Balance)
	}
	return total
}

// NetChange is the signed total effect of a set of transaction legs.
// Credits add, debits subtract. Across both legs of any transfer it is zero.
func NetChange(transactions []domain.Transaction) decimal.Decimal {
	net := decimal.Zero
	for _, txn := range transactions {
		if txn.Type == domain.Debit {
			net = net.Sub(txn.Amount)
		} else {
			net = net.Add(txn.Amount)
		}
	}
	return net
}
