package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting is the database representation of a ledger posting row.
// running_balance is stored for display but always recomputed on change;
// the posting list is the source of truth.
type Posting struct {
	PostingID      string          `json:"postingID"`
	PartyID        string          `json:"partyID"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	LinkGroupID    *string         `json:"linkGroupID"`
	LinkStrategy   *string         `json:"linkStrategy"`
	AuditFields
}
