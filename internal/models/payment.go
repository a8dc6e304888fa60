package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the database representation of a settlement event.
type Payment struct {
	PaymentID   string          `json:"paymentID"`
	PartyID     string          `json:"partyID"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	CDAmount    decimal.Decimal `json:"cdAmount"`
	CDApplied   bool            `json:"cdApplied"`
	PaymentType string          `json:"paymentType"`
	Channel     string          `json:"channel"`
	Description string          `json:"description"`
	AuditFields
}

// PaymentLine is one paidFor row of a payment, ordered by line_no.
type PaymentLine struct {
	PaymentID        string           `json:"paymentID"`
	LineNo           int              `json:"lineNo"`
	SrNo             string           `json:"srNo"`
	Amount           decimal.Decimal  `json:"amount"`
	CDAmount         decimal.Decimal  `json:"cdAmount"`
	CDApplied        bool             `json:"cdApplied"`
	AdjustedOriginal *decimal.Decimal `json:"adjustedOriginal"`
	ExtraAmount      *decimal.Decimal `json:"extraAmount"`
}
