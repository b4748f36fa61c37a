package utils

import (
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount at the ledger scale.
// Example: 70 returns "70.00", 12.5 returns "12.50".
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(domain.MoneyScale)
}

// HasMoneyScale reports whether amount carries no more fractional digits than the ledger keeps.
func HasMoneyScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(domain.MoneyScale))
}
