package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutstandingEntry is the database representation of an invoice-like line item.
type OutstandingEntry struct {
	EntryID           string          `json:"entryID"`
	PartyID           string          `json:"partyID"`
	SrNo              string          `json:"srNo"`
	OriginalNetAmount decimal.Decimal `json:"originalNetAmount"`
	NetAmount         decimal.Decimal `json:"netAmount"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	TotalCD           decimal.Decimal `json:"totalCd"`
	DueDate           time.Time       `json:"dueDate"`
	Rate              decimal.Decimal `json:"rate"`
	NetQuantity       decimal.Decimal `json:"netQuantity"`
	FinalQuantity     decimal.Decimal `json:"finalQuantity"`
	DeletedAt         *time.Time      `json:"-"`
	AuditFields
}
