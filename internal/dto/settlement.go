package dto

import (
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/utils/receiptpick"
	"github.com/shopspring/decimal"
)

// DiscountPreviewRequest asks for the cash discount a hypothetical payment
// would earn, without recording anything.
type DiscountPreviewRequest struct {
	PartyID      string          `json:"partyID" binding:"required"`
	Mode         string          `json:"mode" binding:"required,oneof=partial_on_paid on_unpaid_amount on_full_amount on_previously_paid_no_cd"`
	Percent      decimal.Decimal `json:"percent" binding:"required,dgt0"`
	PaymentType  string          `json:"paymentType" binding:"required,oneof=Full Partial"`
	SettleAmount decimal.Decimal `json:"settleAmount"`
	Date         time.Time       `json:"date" binding:"required"`
	EntrySrNos   []string        `json:"entrySrNos"`
}

// DiscountPreviewResponse carries the computed discount and its inputs.
type DiscountPreviewResponse struct {
	Eligible         bool            `json:"eligible"`
	Amount           decimal.Decimal `json:"amount"`
	Base             decimal.Decimal `json:"base"`
	Offset           decimal.Decimal `json:"offset"`
	MaxAvailable     decimal.Decimal `json:"maxAvailable"`
	EffectivePercent decimal.Decimal `json:"effectivePercent"`
	ToBePaid         decimal.Decimal `json:"toBePaid"`
}

// CombinationSearchRequest asks for receipt subsets whose surcharged totals
// come closest to a target official amount.
type CombinationSearchRequest struct {
	PartyID          string          `json:"partyID" binding:"required"`
	TargetAmount     decimal.Decimal `json:"targetAmount" binding:"required,dgt0"`
	OfficialRate     decimal.Decimal `json:"officialRate" binding:"required,dgt0"`
	ExtraRatePerUnit decimal.Decimal `json:"extraRatePerUnit"`
	Base             string          `json:"base" binding:"omitempty,oneof=net_quantity final_quantity outstanding_by_rate"`
	Compounded       bool            `json:"compounded"`
	EntrySrNos       []string        `json:"entrySrNos"`
}

// CombinationEntryResponse is one receipt inside a proposed combination.
type CombinationEntryResponse struct {
	SrNo           string          `json:"srNo"`
	BaseAmount     decimal.Decimal `json:"baseAmount"`
	ExtraAmount    decimal.Decimal `json:"extraAmount"`
	OfficialAmount decimal.Decimal `json:"officialAmount"`
}

// CombinationResponse is one proposed receipt subset.
type CombinationResponse struct {
	Entries       []CombinationEntryResponse `json:"entries"`
	BaseTotal     decimal.Decimal            `json:"baseTotal"`
	OfficialTotal decimal.Decimal            `json:"officialTotal"`
	Difference    decimal.Decimal            `json:"difference"`
}

// CombinationSearchResponse lists candidate combinations ordered by how
// close each comes to the target, closest first.
type CombinationSearchResponse struct {
	Combinations []CombinationResponse `json:"combinations"`
	Truncated    bool                  `json:"truncated"`
}

// ToCombinationResponse converts a domain.Combination to its DTO. The
// per-entry extra and official amounts are recomputed from cfg since the
// domain combination only carries the raw entries.
func ToCombinationResponse(c *domain.Combination, cfg receiptpick.Config) CombinationResponse {
	entries := make([]CombinationEntryResponse, len(c.Entries))
	for i, e := range c.Entries {
		entries[i] = CombinationEntryResponse{
			SrNo:           e.SrNo,
			BaseAmount:     e.Outstanding(),
			ExtraAmount:    receiptpick.ExtraAmount(e, cfg),
			OfficialAmount: receiptpick.OfficialAmount(e, cfg),
		}
	}
	return CombinationResponse{
		Entries:       entries,
		BaseTotal:     c.BaseTotal,
		OfficialTotal: c.OfficialTotal,
		Difference:    c.Difference,
	}
}

// ToCombinationResponses converts a slice of combinations to DTOs
func ToCombinationResponses(combos []domain.Combination, cfg receiptpick.Config) []CombinationResponse {
	out := make([]CombinationResponse, len(combos))
	for i := range combos {
		out[i] = ToCombinationResponse(&combos[i], cfg)
	}
	return out
}
