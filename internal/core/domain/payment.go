package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType indicates whether a payment fully settles the selected entries.
type PaymentType string

const (
	PaymentFull    PaymentType = "Full"
	PaymentPartial PaymentType = "Partial"
)

// PaymentChannel is the route the settlement money moved through.
type PaymentChannel string

const (
	ChannelCash   PaymentChannel = "Cash"
	ChannelOnline PaymentChannel = "Online"
	ChannelRTGS   PaymentChannel = "RTGS"
	// ChannelGov is the official disbursement channel; entries settled
	// through it carry an adjusted original amount (outstanding + extra).
	ChannelGov PaymentChannel = "Gov."
)

// Allocation is one paidFor line of a payment: the portion of the payment
// attributed to a specific outstanding entry.
type Allocation struct {
	SrNo      string          `json:"srNo"`
	Amount    decimal.Decimal `json:"amount"`    // Cash applied to the entry
	CDAmount  decimal.Decimal `json:"cdAmount"`  // Discount applied to the entry
	CDApplied bool            `json:"cdApplied"` // Whether discount was enabled for this line
	// AdjustedOriginal and ExtraAmount are set only for the official
	// channel, where the entry's effective original is inflated.
	AdjustedOriginal *decimal.Decimal `json:"adjustedOriginal,omitempty"`
	ExtraAmount      *decimal.Decimal `json:"extraAmount,omitempty"`
}

// Settled returns the total settlement value of the line (cash + discount).
func (a Allocation) Settled() decimal.Decimal {
	return a.Amount.Add(a.CDAmount)
}

// Payment is a settlement event against one party's outstanding entries.
type Payment struct {
	PaymentID   string          `json:"paymentID"` // Primary Key (e.g., UUID)
	PartyID     string          `json:"partyID"`   // FK -> Party.partyID (Not Null)
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`    // Gross amount actually transferred
	CDAmount    decimal.Decimal `json:"cdAmount"`  // Discount amount applied
	CDApplied   bool            `json:"cdApplied"` // Whether discount was enabled
	PaymentType PaymentType     `json:"paymentType"`
	Channel     PaymentChannel  `json:"channel"`
	Description string          `json:"description"` // Free text
	PaidFor     []Allocation    `json:"paidFor"`     // Ordered oldest-due first
	AuditFields
}

// SettlementValue is the total value settled by the payment: the cash
// transferred plus the discount granted.
func (p *Payment) SettlementValue() decimal.Decimal {
	if !p.CDApplied {
		return p.Amount
	}
	return p.Amount.Add(p.CDAmount)
}

// Validate checks the structural invariants of a payment: a positive gross
// amount, at least one allocation line, and paidFor lines that sum to the
// settlement value.
func (p *Payment) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("payment amount must be positive, got %s", p.Amount)
	}
	if len(p.PaidFor) == 0 {
		return fmt.Errorf("payment must allocate to at least one entry")
	}
	settled := decimal.Zero
	for _, line := range p.PaidFor {
		if line.Amount.IsNegative() || line.CDAmount.IsNegative() {
			return fmt.Errorf("allocation for entry %s has negative amounts", line.SrNo)
		}
		settled = settled.Add(line.Settled())
	}
	// Excess over the pool of entries is accepted and simply not allocated,
	// so the lines may settle less than the payment value, never more.
	if settled.GreaterThan(p.SettlementValue()) {
		return fmt.Errorf("allocations settle %s, exceeding payment settlement value %s",
			settled, p.SettlementValue())
	}
	return nil
}
