package services

import (
	"context"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/dto"
	"github.com/shopspring/decimal"
)

// PostingReaderSvc defines read operations for ledger postings
type PostingReaderSvc interface {
	// GetPostingByID retrieves a specific posting by its ID.
	GetPostingByID(ctx context.Context, postingID string) (*domain.Posting, error)

	// ListPostingsByParty retrieves a paginated ledger for a party,
	// newest first, with running balances already materialized.
	ListPostingsByParty(ctx context.Context, partyID string, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error)
}

// PostingWriterSvc defines write operations for ledger postings.
// Every mutation recalculates the affected party's running balances, and
// linked mutations propagate to the counterpart party's ledger in the same
// transaction. The returned diverged flag reports a linked mutation whose
// counterpart row no longer exists.
type PostingWriterSvc interface {
	// CreatePosting persists a new posting, plus the linked counterpart
	// when the request names a linked party.
	CreatePosting(ctx context.Context, req dto.CreatePostingRequest) (*domain.Posting, error)

	// UpdatePosting updates a posting and its counterpart.
	UpdatePosting(ctx context.Context, postingID string, req dto.UpdatePostingRequest) (*domain.Posting, bool, error)

	// DeletePosting removes a posting and its counterpart.
	DeletePosting(ctx context.Context, postingID string) (bool, error)
}

// BalanceCalculatorSvc defines calculation operations over a party's ledger
type BalanceCalculatorSvc interface {
	// CalculatePartyBalance returns the party's current running balance.
	CalculatePartyBalance(ctx context.Context, partyID string) (decimal.Decimal, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	PostingReaderSvc
	PostingWriterSvc
	BalanceCalculatorSvc
}
