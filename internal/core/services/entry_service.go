package services

import (
	"context"
	"errors"
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
	"github.com/firmbooks/trade_books_app/internal/utils/moneymath"
	"github.com/shopspring/decimal"
)

var ErrEntryAmountNotPositive = errors.New("entry amount must be positive")

// entryService provides outstanding entry management. Paid and discount
// totals are owned by the payment allocation flow; this service only
// unwinds them when an entry is deleted.
type entryService struct {
	entryRepo   portsrepo.EntryRepositoryFacade
	paymentRepo portsrepo.PaymentRepositoryFacade
	partyRepo   portsrepo.PartyRepositoryFacade
	ids         ports.IDGenerator
}

// NewEntryService creates a new EntryService.
func NewEntryService(entryRepo portsrepo.EntryRepositoryFacade, paymentRepo portsrepo.PaymentRepositoryFacade, partyRepo portsrepo.PartyRepositoryFacade, ids ports.IDGenerator) portssvc.EntrySvcFacade {
	return &entryService{
		entryRepo:   entryRepo,
		paymentRepo: paymentRepo,
		partyRepo:   partyRepo,
		ids:         ids,
	}
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// CreateEntry persists a new outstanding entry.
func (s *entryService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest) (*domain.OutstandingEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: got %s", ErrEntryAmountNotPositive, req.Amount)
	}
	party, err := s.partyRepo.FindPartyByID(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}
	if !party.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrPartyInactive, req.PartyID)
	}

	existing, err := s.entryRepo.FindEntriesBySrNos(ctx, req.PartyID, []string{req.SrNo})
	if err != nil {
		return nil, err
	}
	if _, dup := existing[req.SrNo]; dup {
		return nil, fmt.Errorf("%w: entry %s already exists for party %s", apperrors.ErrDuplicate, req.SrNo, req.PartyID)
	}

	amount := moneymath.Round2(req.Amount)
	now := time.Now().UTC()
	entry := domain.OutstandingEntry{
		EntryID:           s.ids.NewID(),
		PartyID:           req.PartyID,
		SrNo:              req.SrNo,
		OriginalNetAmount: amount,
		NetAmount:         amount,
		TotalPaid:         decimal.Zero,
		TotalCD:           decimal.Zero,
		DueDate:           req.DueDate,
		Rate:              req.Rate,
		NetQuantity:       req.NetQuantity,
		FinalQuantity:     req.FinalQuantity,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to save entry", slog.String("error", err.Error()), slog.String("party_id", req.PartyID))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	logger.Info("Entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("party_id", entry.PartyID),
		slog.String("sr_no", entry.SrNo),
	)
	return &entry, nil
}

// GetEntryByID retrieves a specific entry by its ID.
func (s *entryService) GetEntryByID(ctx context.Context, entryID string) (*domain.OutstandingEntry, error) {
	return s.entryRepo.FindEntryByID(ctx, entryID)
}

// ListOutstandingByParty retrieves a party's unsettled entries, oldest due
// date first.
func (s *entryService) ListOutstandingByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error) {
	if _, err := s.partyRepo.FindPartyByID(ctx, partyID); err != nil {
		return nil, err
	}
	return s.entryRepo.ListOutstandingByParty(ctx, partyID)
}

// ListEntriesByParty retrieves all of a party's entries, settled included.
func (s *entryService) ListEntriesByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error) {
	if _, err := s.partyRepo.FindPartyByID(ctx, partyID); err != nil {
		return nil, err
	}
	return s.entryRepo.ListEntriesByParty(ctx, partyID)
}

// UpdateEntry updates entry details that do not affect paid amounts.
func (s *entryService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest) (*domain.OutstandingEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if req.DueDate != nil {
		entry.DueDate = *req.DueDate
	}
	if req.Rate != nil {
		entry.Rate = *req.Rate
	}
	if req.NetQuantity != nil {
		entry.NetQuantity = *req.NetQuantity
	}
	if req.FinalQuantity != nil {
		entry.FinalQuantity = *req.FinalQuantity
	}
	entry.LastUpdatedAt = time.Now().UTC()

	if err := s.entryRepo.UpdateEntry(ctx, *entry); err != nil {
		logger.Error("Failed to update entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}
	return entry, nil
}

// DeleteEntry soft-deletes an entry. Payments recorded against it are
// reversed first: each such payment is removed whole and the other entries
// it settled get their totals restored, so no payment line is left pointing
// at a deleted entry.
func (s *entryService) DeleteEntry(ctx context.Context, entryID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if !entry.TotalPaid.IsPositive() && !entry.TotalCD.IsPositive() {
		if err := s.entryRepo.SoftDeleteEntry(ctx, entryID, "", now); err != nil {
			logger.Error("Failed to delete entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		logger.Info("Entry deleted", slog.String("entry_id", entryID), slog.String("sr_no", entry.SrNo))
		return nil
	}

	history, err := s.paymentRepo.FindPaymentHistory(ctx, entry.PartyID)
	if err != nil {
		return err
	}
	entries, err := s.entryRepo.ListEntriesByParty(ctx, entry.PartyID)
	if err != nil {
		return err
	}
	pool := indexBySrNo(entries)

	var paymentIDs []string
	touched := make(map[string]struct{})
	for i := range history {
		p := &history[i]
		if !paymentCovers(p, entry.SrNo) {
			continue
		}
		paymentIDs = append(paymentIDs, p.PaymentID)
		for _, e := range reverseInto(pool, p) {
			touched[e.SrNo] = struct{}{}
		}
	}

	// Final per-entry state after all reversals; the doomed entry itself is
	// handled by the soft delete.
	var restored []domain.OutstandingEntry
	for srNo := range touched {
		if srNo == entry.SrNo {
			continue
		}
		if e, ok := pool[srNo]; ok {
			e.LastUpdatedAt = now
			restored = append(restored, *e)
		}
	}

	if err := s.paymentRepo.DeletePaymentsForEntry(ctx, paymentIDs, restored, entryID, "", now); err != nil {
		logger.Error("Failed to delete entry with payment reversal", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	logger.Info("Entry deleted",
		slog.String("entry_id", entryID),
		slog.String("sr_no", entry.SrNo),
		slog.Int("payments_reversed", len(paymentIDs)),
	)
	return nil
}

// paymentCovers reports whether the payment carries a line on the serial
// number.
func paymentCovers(p *domain.Payment, srNo string) bool {
	for _, line := range p.PaidFor {
		if line.SrNo == srNo {
			return true
		}
	}
	return false
}
