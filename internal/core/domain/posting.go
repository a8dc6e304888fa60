package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LinkStrategy controls how a posting is propagated to its linked counterpart.
type LinkStrategy string

const (
	// LinkMirror creates the counterpart with debit and credit swapped.
	LinkMirror LinkStrategy = "mirror"
	// LinkSame creates the counterpart with debit and credit copied as-is.
	LinkSame LinkStrategy = "same"
)

// Posting represents a single debit/credit row in a party's ledger.
// RunningBalance is derived, never authoritative; it is recomputed from the
// full posting list (oldest first, creation time as tie-break) on every change.
type Posting struct {
	PostingID      string          `json:"postingID"`   // Primary Key (e.g., UUID)
	PartyID        string          `json:"partyID"`     // FK -> Party.partyID (Not Null)
	Date           time.Time       `json:"date"`        // Ledger date of the posting
	Description    string          `json:"description"` // Free text
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // Derived
	LinkGroupID    *string         `json:"linkGroupID,omitempty"`  // Shared by the two postings of a linked pair
	LinkStrategy   *LinkStrategy   `json:"linkStrategy,omitempty"` // mirror or same; nil when unlinked
	AuditFields
}

// IsLinked reports whether this posting belongs to a link group.
func (p *Posting) IsLinked() bool {
	return p.LinkGroupID != nil && *p.LinkGroupID != ""
}

// CounterpartFor derives the counterpart posting for the given party from
// this posting according to the link strategy. The counterpart shares the
// link group but is an independently owned record; id and audit fields are
// left for the caller to assign.
func (p *Posting) CounterpartFor(partyID string) Posting {
	cp := Posting{
		PartyID:      partyID,
		Date:         p.Date,
		Description:  p.Description,
		Debit:        p.Debit,
		Credit:       p.Credit,
		LinkGroupID:  p.LinkGroupID,
		LinkStrategy: p.LinkStrategy,
	}
	if p.LinkStrategy != nil && *p.LinkStrategy == LinkMirror {
		cp.Debit, cp.Credit = p.Credit, p.Debit
	}
	return cp
}

// LinkResolution is the explicit result of resolving a posting's linked
// counterpart. Callers decide whether a missing counterpart is a hard error
// or an accepted divergence.
type LinkResolution struct {
	Found   bool
	Posting *Posting
}
