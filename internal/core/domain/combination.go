package domain

import "github.com/shopspring/decimal"

// Combination is a candidate subset of outstanding receipts evaluated
// against a target amount. Combinations are ephemeral: computed on demand
// for the official channel and never persisted.
type Combination struct {
	Entries       []OutstandingEntry `json:"entries"`
	BaseTotal     decimal.Decimal    `json:"baseTotal"`     // Sum of outstanding amounts
	OfficialTotal decimal.Decimal    `json:"officialTotal"` // Sum of adjusted (official) amounts
	Difference    decimal.Decimal    `json:"difference"`    // OfficialTotal - target (signed)
}
