package services

import (
	"context"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/dto"
)

// PartyReaderSvc defines read operations for party data
type PartyReaderSvc interface {
	// GetPartyByID retrieves a specific party by its ID.
	GetPartyByID(ctx context.Context, partyID string) (*domain.Party, error)

	// ListParties retrieves a paginated list of parties.
	ListParties(ctx context.Context, limit int, offset int) ([]domain.Party, error)
}

// PartyWriterSvc defines write operations for party data
type PartyWriterSvc interface {
	// CreateParty persists a new party.
	CreateParty(ctx context.Context, req dto.CreatePartyRequest) (*domain.Party, error)

	// UpdateParty updates party details.
	UpdateParty(ctx context.Context, partyID string, req dto.UpdatePartyRequest) (*domain.Party, error)

	// DeactivateParty marks a party as inactive.
	DeactivateParty(ctx context.Context, partyID string) error
}

// PartySvcFacade combines all party-related service interfaces
type PartySvcFacade interface {
	PartyReaderSvc
	PartyWriterSvc
}
