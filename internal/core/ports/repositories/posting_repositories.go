package repositories

import (
	"context"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
)

// PostingReader defines read operations for ledger postings
type PostingReader interface {
	// FindPostingByID retrieves a specific posting by its unique identifier.
	FindPostingByID(ctx context.Context, postingID string) (*domain.Posting, error)

	// FindCounterpart retrieves the other posting of a link group, i.e. the
	// one whose id differs from excludePostingID. Returns ErrNotFound when
	// the counterpart is missing.
	FindCounterpart(ctx context.Context, linkGroupID string, excludePostingID string) (*domain.Posting, error)

	// ListPostingsByParty retrieves every posting of a party, oldest first.
	// Balance recomputation always works on the full list.
	ListPostingsByParty(ctx context.Context, partyID string) ([]domain.Posting, error)

	// ListPostingsByPartyPaginated retrieves postings newest first for
	// display, using token pagination.
	ListPostingsByPartyPaginated(ctx context.Context, partyID string, limit int, nextToken *string) ([]domain.Posting, *string, error)
}

// PostingWriter defines write operations for ledger postings. Every write
// also persists the rebalanced running balances of the affected parties;
// inserts, updates, deletes and balance updates of one logical mutation
// happen inside a single database transaction.
type PostingWriter interface {
	// SavePostings inserts new postings (a lone posting, or a linked pair
	// spanning two parties) and persists the recomputed running balances.
	SavePostings(ctx context.Context, postings []domain.Posting, rebalanced []domain.Posting) error

	// UpdatePostings updates existing postings and persists the recomputed
	// running balances.
	UpdatePostings(ctx context.Context, postings []domain.Posting, rebalanced []domain.Posting) error

	// DeletePostings removes postings by id and persists the recomputed
	// running balances of the remaining rows.
	DeletePostings(ctx context.Context, postingIDs []string, rebalanced []domain.Posting) error
}

// PostingRepositoryFacade combines all posting-related repository interfaces.
type PostingRepositoryFacade interface {
	PostingReader
	PostingWriter
}
