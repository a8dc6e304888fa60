package dto

import (
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePostingRequest defines the data needed to create a ledger posting.
// At most one of debit/credit should be non-zero in normal use; the model
// does not forbid both. A linked posting names the counterpart party and a
// strategy; the engine creates the counterpart row itself.
type CreatePostingRequest struct {
	PartyID       string          `json:"partyID" binding:"required"`
	Date          time.Time       `json:"date" binding:"required"`
	Description   string          `json:"description"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	LinkedPartyID *string         `json:"linkedPartyID"`
	LinkStrategy  *string         `json:"linkStrategy" binding:"omitempty,oneof=mirror same"`
}

// UpdatePostingRequest defines the fields that may change on a posting.
type UpdatePostingRequest struct {
	Date        *time.Time       `json:"date"`
	Description *string          `json:"description"`
	Debit       *decimal.Decimal `json:"debit"`
	Credit      *decimal.Decimal `json:"credit"`
}

// PostingResponse defines the data returned for one ledger row.
type PostingResponse struct {
	PostingID      string          `json:"postingID"`
	PartyID        string          `json:"partyID"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	LinkGroupID    *string         `json:"linkGroupID,omitempty"`
	LinkStrategy   *string         `json:"linkStrategy,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// PostingMutationResponse wraps a mutated posting plus the linkage outcome.
// LinkDiverged is true when the posting belongs to a link group but its
// counterpart could not be found, so only the primary side changed.
type PostingMutationResponse struct {
	Posting      PostingResponse `json:"posting"`
	LinkDiverged bool            `json:"linkDiverged,omitempty"`
}

// ListPostingsParams holds parameters for listing a party's ledger.
type ListPostingsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListPostingsResponse is a page of ledger rows in display order (newest
// first) with the party's closing balance.
type ListPostingsResponse struct {
	Postings  []PostingResponse `json:"postings"`
	Balance   decimal.Decimal   `json:"balance"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToPostingResponse converts a domain.Posting to PostingResponse DTO
func ToPostingResponse(p *domain.Posting) PostingResponse {
	resp := PostingResponse{
		PostingID:      p.PostingID,
		PartyID:        p.PartyID,
		Date:           p.Date,
		Description:    p.Description,
		Debit:          p.Debit,
		Credit:         p.Credit,
		RunningBalance: p.RunningBalance,
		LinkGroupID:    p.LinkGroupID,
		CreatedAt:      p.CreatedAt,
	}
	if p.LinkStrategy != nil {
		strategy := string(*p.LinkStrategy)
		resp.LinkStrategy = &strategy
	}
	return resp
}

// ToPostingResponses converts a slice of domain postings to response DTOs
func ToPostingResponses(postings []domain.Posting) []PostingResponse {
	out := make([]PostingResponse, len(postings))
	for i := range postings {
		out[i] = ToPostingResponse(&postings[i])
	}
	return out
}
