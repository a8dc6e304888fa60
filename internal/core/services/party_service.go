package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firmbooks/trade_books_app/internal/apperrors"
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/core/ports"
	portsrepo "github.com/firmbooks/trade_books_app/internal/core/ports/repositories"
	portssvc "github.com/firmbooks/trade_books_app/internal/core/ports/services"
	"github.com/firmbooks/trade_books_app/internal/dto"
	"github.com/firmbooks/trade_books_app/internal/middleware"
)

// partyService provides party management operations.
type partyService struct {
	partyRepo portsrepo.PartyRepositoryFacade
	ids       ports.IDGenerator
}

// NewPartyService creates a new PartyService.
func NewPartyService(partyRepo portsrepo.PartyRepositoryFacade, ids ports.IDGenerator) portssvc.PartySvcFacade {
	return &partyService{
		partyRepo: partyRepo,
		ids:       ids,
	}
}

var _ portssvc.PartySvcFacade = (*partyService)(nil)

// CreateParty persists a new party.
func (s *partyService) CreateParty(ctx context.Context, req dto.CreatePartyRequest) (*domain.Party, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	party := domain.Party{
		PartyID:  s.ids.NewID(),
		Name:     req.Name,
		Address:  req.Address,
		Contact:  req.Contact,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.partyRepo.SaveParty(ctx, party); err != nil {
		logger.Error("Failed to save party", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	logger.Info("Party created", slog.String("party_id", party.PartyID))
	return &party, nil
}

// GetPartyByID retrieves a specific party by its ID.
func (s *partyService) GetPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		return nil, err
	}
	return party, nil
}

// ListParties retrieves a paginated list of parties.
func (s *partyService) ListParties(ctx context.Context, limit int, offset int) ([]domain.Party, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.partyRepo.ListParties(ctx, limit, offset)
}

// UpdateParty updates party details.
func (s *partyService) UpdateParty(ctx context.Context, partyID string, req dto.UpdatePartyRequest) (*domain.Party, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: party name must not be empty", apperrors.ErrValidation)
		}
		party.Name = *req.Name
	}
	if req.Address != nil {
		party.Address = *req.Address
	}
	if req.Contact != nil {
		party.Contact = *req.Contact
	}
	party.LastUpdatedAt = time.Now().UTC()

	if err := s.partyRepo.UpdateParty(ctx, *party); err != nil {
		logger.Error("Failed to update party", slog.String("error", err.Error()), slog.String("party_id", partyID))
		return nil, fmt.Errorf("failed to update party: %w", err)
	}
	return party, nil
}

// DeactivateParty marks a party as inactive. The party's ledger and entries
// survive; only new activity is blocked.
func (s *partyService) DeactivateParty(ctx context.Context, partyID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.partyRepo.FindPartyByID(ctx, partyID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.partyRepo.DeactivateParty(ctx, partyID, "", now); err != nil {
		logger.Error("Failed to deactivate party", slog.String("error", err.Error()), slog.String("party_id", partyID))
		return fmt.Errorf("failed to deactivate party: %w", err)
	}
	logger.Info("Party deactivated", slog.String("party_id", partyID))
	return nil
}
