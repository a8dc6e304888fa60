package repositories

import (
	"context"
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
)

// PartyReader defines read operations for party data
type PartyReader interface {
	// FindPartyByID retrieves a specific party by its unique identifier.
	FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error)

	// ListParties retrieves a paginated list of parties.
	ListParties(ctx context.Context, limit int, offset int) ([]domain.Party, error)
}

// PartyWriter defines write operations for party data
type PartyWriter interface {
	// SaveParty persists a new party.
	SaveParty(ctx context.Context, party domain.Party) error

	// UpdateParty updates an existing party's details.
	UpdateParty(ctx context.Context, party domain.Party) error

	// DeactivateParty marks a party as inactive. Parties are never removed.
	DeactivateParty(ctx context.Context, partyID string, userID string, now time.Time) error
}

// PartyRepositoryFacade combines all party-related repository interfaces.
type PartyRepositoryFacade interface {
	PartyReader
	PartyWriter
}
