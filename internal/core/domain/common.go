package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// MoneyScale is the number of fractional digits kept for every amount and balance.
const MoneyScale int32 = 2

// DefaultCurrency is used when an account is opened without a currency.
const DefaultCurrency = "USD"
