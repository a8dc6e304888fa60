package dto

import (
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryRequest defines the data needed to create an outstanding entry.
type CreateEntryRequest struct {
	PartyID       string          `json:"partyID" binding:"required"`
	SrNo          string          `json:"srNo" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required,dgt0"`
	DueDate       time.Time       `json:"dueDate" binding:"required"`
	Rate          decimal.Decimal `json:"rate"`
	NetQuantity   decimal.Decimal `json:"netQuantity"`
	FinalQuantity decimal.Decimal `json:"finalQuantity"`
}

// UpdateEntryRequest defines the fields that may change on an entry.
// Amounts are not editable once payments begin; the service re-derives
// the outstanding instead of accepting one.
type UpdateEntryRequest struct {
	DueDate       *time.Time       `json:"dueDate"`
	Rate          *decimal.Decimal `json:"rate"`
	NetQuantity   *decimal.Decimal `json:"netQuantity"`
	FinalQuantity *decimal.Decimal `json:"finalQuantity"`
}

// EntryResponse defines the data returned for an outstanding entry.
type EntryResponse struct {
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
	CreatedAt         time.Time       `json:"createdAt"`
}

// ToEntryResponse converts a domain.OutstandingEntry to EntryResponse DTO
func ToEntryResponse(e *domain.OutstandingEntry) EntryResponse {
	return EntryResponse{
		EntryID:           e.EntryID,
		PartyID:           e.PartyID,
		SrNo:              e.SrNo,
		OriginalNetAmount: e.OriginalNetAmount,
		NetAmount:         e.NetAmount,
		TotalPaid:         e.TotalPaid,
		TotalCD:           e.TotalCD,
		DueDate:           e.DueDate,
		Rate:              e.Rate,
		NetQuantity:       e.NetQuantity,
		FinalQuantity:     e.FinalQuantity,
		CreatedAt:         e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of domain entries to response DTOs
func ToEntryResponses(entries []domain.OutstandingEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}
