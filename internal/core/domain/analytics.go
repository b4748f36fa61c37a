package domain

import "github.com/shopspring/decimal"

// MonthlyTotal is the sum of one transaction type within one calendar month.
type MonthlyTotal struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Type  TransactionType `json:"type"`
	Total decimal.Decimal `json:"total"`
}

// CategoryTotal is the current month's sum for one category. A nil Category
// is the bucket for uncategorised transactions.
type CategoryTotal struct {
	Category *string         `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Analytics summarises an owner's accounts.
type Analytics struct {
	Monthly      []MonthlyTotal  `json:"monthly"`
	ByCategory   []CategoryTotal `json:"byCategory"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}
