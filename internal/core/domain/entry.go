package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// outstandingTolerance absorbs sub-paisa drift when deciding whether an
// entry is fully settled. An outstanding above -0.01 clamps to zero.
var outstandingTolerance = decimal.NewFromFloat(-0.01)

// OutstandingEntry is an invoice-like payable/receivable line item.
// OriginalNetAmount is immutable once payments begin; NetAmount is the
// current outstanding (original - paid - discount). Only the payment
// allocation flow mutates the paid/discount totals.
type OutstandingEntry struct {
	EntryID           string          `json:"entryID"` // Primary Key (e.g., UUID)
	PartyID           string          `json:"partyID"` // FK -> Party.partyID (Not Null)
	SrNo              string          `json:"srNo"`    // Serial identifier, unique per party
	OriginalNetAmount decimal.Decimal `json:"originalNetAmount"`
	NetAmount         decimal.Decimal `json:"netAmount"` // Current outstanding
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	TotalCD           decimal.Decimal `json:"totalCd"` // Cumulative cash discount granted
	DueDate           time.Time       `json:"dueDate"`
	Rate              decimal.Decimal `json:"rate"`          // Per-unit rate at creation
	NetQuantity       decimal.Decimal `json:"netQuantity"`   // Quantity before deductions
	FinalQuantity     decimal.Decimal `json:"finalQuantity"` // Quantity after deductions
	DeletedAt         *time.Time      `json:"-"`             // Soft delete marker
	AuditFields
}

// Outstanding returns the remaining payable amount, floor-clamped to zero.
func (e *OutstandingEntry) Outstanding() decimal.Decimal {
	return clampOutstanding(e.OriginalNetAmount.Sub(e.TotalPaid).Sub(e.TotalCD))
}

// OutstandingAgainst returns the remaining payable amount derived from an
// adjusted original (official-channel top-up) instead of the recorded one.
func (e *OutstandingEntry) OutstandingAgainst(adjustedOriginal decimal.Decimal) decimal.Decimal {
	return clampOutstanding(adjustedOriginal.Sub(e.TotalPaid).Sub(e.TotalCD))
}

// ApplyAllocation records a payment allocation against the entry.
func (e *OutstandingEntry) ApplyAllocation(amount, cdAmount decimal.Decimal) {
	e.TotalPaid = e.TotalPaid.Add(amount)
	e.TotalCD = e.TotalCD.Add(cdAmount)
	e.NetAmount = e.Outstanding()
}

// ReverseAllocation undoes a previously recorded allocation, restoring the
// entry's outstanding by the allocated amount plus its discount share.
func (e *OutstandingEntry) ReverseAllocation(amount, cdAmount decimal.Decimal) {
	e.TotalPaid = e.TotalPaid.Sub(amount)
	e.TotalCD = e.TotalCD.Sub(cdAmount)
	e.NetAmount = e.Outstanding()
}

// IsSettled reports whether the entry has no outstanding left.
func (e *OutstandingEntry) IsSettled() bool {
	return e.Outstanding().IsZero()
}

func clampOutstanding(d decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(decimal.Zero) {
		return d
	}
	if d.GreaterThanOrEqual(outstandingTolerance) {
		return decimal.Zero
	}
	// A genuinely negative outstanding indicates over-application upstream;
	// keep the value visible rather than masking it.
	return d
}
