package dto

import (
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest defines the data needed to register a payment.
// DiscountAmount, when present, overrides the computed discount. EntrySrNos
// restricts the allocation to specific entries; empty means all outstanding.
// ExtraAmounts carries per-entry surcharge totals for official-channel
// receipts, keyed by entry serial number.
type CreatePaymentRequest struct {
	PartyID        string                     `json:"partyID" binding:"required"`
	PaymentType    string                     `json:"paymentType" binding:"required,oneof=Full Partial"`
	Channel        string                     `json:"channel" binding:"required"`
	Amount         decimal.Decimal            `json:"amount" binding:"required,dgt0"`
	Date           time.Time                  `json:"date" binding:"required"`
	Description    string                     `json:"description"`
	DiscountMode   string                     `json:"discountMode" binding:"omitempty,oneof=partial_on_paid on_unpaid_amount on_full_amount on_previously_paid_no_cd"`
	DiscountPct    decimal.Decimal            `json:"discountPercent"`
	DiscountAmount *decimal.Decimal           `json:"discountAmount"`
	EntrySrNos     []string                   `json:"entrySrNos"`
	ExtraAmounts   map[string]decimal.Decimal `json:"extraAmounts"`
}

// UpdatePaymentRequest carries a full replacement payload for an existing
// payment. The edit reverses the prior allocation and reapplies this one
// under the same payment identity.
type UpdatePaymentRequest struct {
	PaymentType    string                     `json:"paymentType" binding:"required,oneof=Full Partial"`
	Channel        string                     `json:"channel" binding:"required"`
	Amount         decimal.Decimal            `json:"amount" binding:"required,dgt0"`
	Date           time.Time                  `json:"date" binding:"required"`
	Description    string                     `json:"description"`
	DiscountMode   string                     `json:"discountMode" binding:"omitempty,oneof=partial_on_paid on_unpaid_amount on_full_amount on_previously_paid_no_cd"`
	DiscountPct    decimal.Decimal            `json:"discountPercent"`
	DiscountAmount *decimal.Decimal           `json:"discountAmount"`
	EntrySrNos     []string                   `json:"entrySrNos"`
	ExtraAmounts   map[string]decimal.Decimal `json:"extraAmounts"`
}

// AllocationResponse defines one paidFor line of a payment's allocation.
type AllocationResponse struct {
	SrNo             string           `json:"srNo"`
	Amount           decimal.Decimal  `json:"amount"`
	CDAmount         decimal.Decimal  `json:"cdAmount"`
	CDApplied        bool             `json:"cdApplied"`
	AdjustedOriginal *decimal.Decimal `json:"adjustedOriginal,omitempty"`
	ExtraAmount      *decimal.Decimal `json:"extraAmount,omitempty"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID   string               `json:"paymentID"`
	PartyID     string               `json:"partyID"`
	PaymentType string               `json:"paymentType"`
	Channel     string               `json:"channel"`
	Amount      decimal.Decimal      `json:"amount"`
	CDAmount    decimal.Decimal      `json:"cdAmount"`
	CDApplied   bool                 `json:"cdApplied"`
	Date        time.Time            `json:"date"`
	Description string               `json:"description"`
	PaidFor     []AllocationResponse `json:"paidFor"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// ListPaymentsParams defines query parameters for listing payments.
type ListPaymentsParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken" binding:"omitempty"`
}

// ListPaymentsResponse defines the response for listing payments.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse DTO
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	paidFor := make([]AllocationResponse, len(p.PaidFor))
	for i, l := range p.PaidFor {
		paidFor[i] = AllocationResponse{
			SrNo:             l.SrNo,
			Amount:           l.Amount,
			CDAmount:         l.CDAmount,
			CDApplied:        l.CDApplied,
			AdjustedOriginal: l.AdjustedOriginal,
			ExtraAmount:      l.ExtraAmount,
		}
	}
	return PaymentResponse{
		PaymentID:   p.PaymentID,
		PartyID:     p.PartyID,
		PaymentType: string(p.PaymentType),
		Channel:     string(p.Channel),
		Amount:      p.Amount,
		CDAmount:    p.CDAmount,
		CDApplied:   p.CDApplied,
		Date:        p.Date,
		Description: p.Description,
		PaidFor:     paidFor,
		CreatedAt:   p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of domain payments to response DTOs
func ToPaymentResponses(payments []domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}
