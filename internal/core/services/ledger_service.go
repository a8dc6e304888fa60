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

var (
	ErrPartyInactive    = errors.New("party is inactive")
	ErrNegativeAmount   = errors.New("debit and credit amounts must not be negative")
	ErrLinkedToSelf     = errors.New("posting cannot be linked to its own party")
	ErrNoAmount         = errors.New("posting must carry a debit or a credit")
	ErrStrategyOnUnlink = errors.New("link strategy given without a linked party")
)

// ledgerService provides running-balance ledger operations. Every mutation
// recomputes the affected parties' running balances from their full posting
// lists and persists rows and balances in one repository transaction.
type ledgerService struct {
	postingRepo portsrepo.PostingRepositoryFacade
	partyRepo   portsrepo.PartyRepositoryFacade
	ids         ports.IDGenerator
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(postingRepo portsrepo.PostingRepositoryFacade, partyRepo portsrepo.PartyRepositoryFacade, ids ports.IDGenerator) portssvc.LedgerSvcFacade {
	return &ledgerService{
		postingRepo: postingRepo,
		partyRepo:   partyRepo,
		ids:         ids,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreatePosting persists a new posting, plus the linked counterpart when the
// request names a linked party. The pair shares a link group id and both
// parties' ledgers are rebalanced in the same transaction.
func (s *ledgerService) CreatePosting(ctx context.Context, req dto.CreatePostingRequest) (*domain.Posting, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateAmounts(req.Debit, req.Credit); err != nil {
		return nil, err
	}
	if req.LinkedPartyID == nil && req.LinkStrategy != nil {
		return nil, ErrStrategyOnUnlink
	}
	if req.LinkedPartyID != nil && *req.LinkedPartyID == req.PartyID {
		return nil, ErrLinkedToSelf
	}

	if err := s.requireActiveParty(ctx, req.PartyID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	posting := domain.Posting{
		PostingID:   s.ids.NewID(),
		PartyID:     req.PartyID,
		Date:        req.Date,
		Description: req.Description,
		Debit:       req.Debit,
		Credit:      req.Credit,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	inserted := []domain.Posting{posting}
	if req.LinkedPartyID != nil {
		if err := s.requireActiveParty(ctx, *req.LinkedPartyID); err != nil {
			return nil, err
		}
		strategy := domain.LinkMirror
		if req.LinkStrategy != nil {
			strategy = domain.LinkStrategy(*req.LinkStrategy)
		}
		linkGroupID := s.ids.NewID()
		posting.LinkGroupID = &linkGroupID
		posting.LinkStrategy = &strategy

		counterpart := posting.CounterpartFor(*req.LinkedPartyID)
		counterpart.PostingID = s.ids.NewID()
		counterpart.AuditFields = posting.AuditFields
		inserted = []domain.Posting{posting, counterpart}
	}

	rebalanced, err := s.rebalanceParties(ctx, applyInsert(inserted))
	if err != nil {
		return nil, err
	}
	if err := s.postingRepo.SavePostings(ctx, inserted, rebalanced); err != nil {
		logger.Error("Failed to save postings", slog.String("error", err.Error()), slog.String("party_id", req.PartyID))
		return nil, fmt.Errorf("failed to save postings: %w", err)
	}

	logger.Info("Posting created",
		slog.String("posting_id", posting.PostingID),
		slog.String("party_id", posting.PartyID),
		slog.Bool("linked", posting.IsLinked()),
	)
	return &posting, nil
}

// UpdatePosting updates a posting and propagates the change to its linked
// counterpart. A linked posting whose counterpart no longer exists is
// updated alone and reported as diverged.
func (s *ledgerService) UpdatePosting(ctx context.Context, postingID string, req dto.UpdatePostingRequest) (*domain.Posting, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	posting, err := s.postingRepo.FindPostingByID(ctx, postingID)
	if err != nil {
		return nil, false, err
	}

	if req.Date != nil {
		posting.Date = *req.Date
	}
	if req.Description != nil {
		posting.Description = *req.Description
	}
	if req.Debit != nil {
		posting.Debit = *req.Debit
	}
	if req.Credit != nil {
		posting.Credit = *req.Credit
	}
	if err := validateAmounts(posting.Debit, posting.Credit); err != nil {
		return nil, false, err
	}
	posting.LastUpdatedAt = time.Now().UTC()

	updated := []domain.Posting{*posting}
	diverged := false
	if posting.IsLinked() {
		res, err := s.resolveCounterpart(ctx, posting)
		if err != nil {
			return nil, false, err
		}
		if !res.Found {
			diverged = true
			logger.Warn("Linked counterpart missing, updating one side only",
				slog.String("posting_id", posting.PostingID),
				slog.String("link_group_id", *posting.LinkGroupID),
			)
		} else {
			cp := res.Posting
			derived := posting.CounterpartFor(cp.PartyID)
			cp.Date = derived.Date
			cp.Description = derived.Description
			cp.Debit = derived.Debit
			cp.Credit = derived.Credit
			cp.LastUpdatedAt = posting.LastUpdatedAt
			updated = append(updated, *cp)
		}
	}

	rebalanced, err := s.rebalanceParties(ctx, applyUpdate(updated))
	if err != nil {
		return nil, false, err
	}
	if err := s.postingRepo.UpdatePostings(ctx, updated, rebalanced); err != nil {
		logger.Error("Failed to update postings", slog.String("error", err.Error()), slog.String("posting_id", postingID))
		return nil, false, fmt.Errorf("failed to update postings: %w", err)
	}
	return posting, diverged, nil
}

// DeletePosting removes a posting and its linked counterpart. A linked
// posting whose counterpart no longer exists is removed alone and reported
// as diverged.
func (s *ledgerService) DeletePosting(ctx context.Context, postingID string) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	posting, err := s.postingRepo.FindPostingByID(ctx, postingID)
	if err != nil {
		return false, err
	}

	removed := []domain.Posting{*posting}
	diverged := false
	if posting.IsLinked() {
		res, err := s.resolveCounterpart(ctx, posting)
		if err != nil {
			return false, err
		}
		if !res.Found {
			diverged = true
			logger.Warn("Linked counterpart missing, deleting one side only",
				slog.String("posting_id", posting.PostingID),
				slog.String("link_group_id", *posting.LinkGroupID),
			)
		} else {
			removed = append(removed, *res.Posting)
		}
	}

	rebalanced, err := s.rebalanceParties(ctx, applyDelete(removed))
	if err != nil {
		return false, err
	}
	ids := make([]string, len(removed))
	for i, p := range removed {
		ids[i] = p.PostingID
	}
	if err := s.postingRepo.DeletePostings(ctx, ids, rebalanced); err != nil {
		logger.Error("Failed to delete postings", slog.String("error", err.Error()), slog.String("posting_id", postingID))
		return false, fmt.Errorf("failed to delete postings: %w", err)
	}
	return diverged, nil
}

// GetPostingByID retrieves a specific posting by its ID.
func (s *ledgerService) GetPostingByID(ctx context.Context, postingID string) (*domain.Posting, error) {
	return s.postingRepo.FindPostingByID(ctx, postingID)
}

// ListPostingsByParty retrieves a page of the party's ledger, newest first,
// along with the party's closing balance.
func (s *ledgerService) ListPostingsByParty(ctx context.Context, partyID string, params dto.ListPostingsParams) (*dto.ListPostingsResponse, error) {
	if _, err := s.partyRepo.FindPartyByID(ctx, partyID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	postings, nextToken, err := s.postingRepo.ListPostingsByPartyPaginated(ctx, partyID, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	balance, err := s.CalculatePartyBalance(ctx, partyID)
	if err != nil {
		return nil, err
	}

	return &dto.ListPostingsResponse{
		Postings:  dto.ToPostingResponses(postings),
		Balance:   balance,
		NextToken: nextToken,
	}, nil
}

// CalculatePartyBalance returns the party's current running balance,
// recomputed from the full posting list rather than read off the last row.
func (s *ledgerService) CalculatePartyBalance(ctx context.Context, partyID string) (decimal.Decimal, error) {
	postings, err := s.postingRepo.ListPostingsByParty(ctx, partyID)
	if err != nil {
		return decimal.Zero, err
	}
	return moneymath.PartyBalance(postings), nil
}

func (s *ledgerService) requireActiveParty(ctx context.Context, partyID string) error {
	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		return err
	}
	if !party.IsActive {
		return fmt.Errorf("%w: %s", ErrPartyInactive, partyID)
	}
	return nil
}

// resolveCounterpart looks up the other posting of the link group. A
// missing counterpart is a resolution outcome, not an error.
func (s *ledgerService) resolveCounterpart(ctx context.Context, posting *domain.Posting) (domain.LinkResolution, error) {
	cp, err := s.postingRepo.FindCounterpart(ctx, *posting.LinkGroupID, posting.PostingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.LinkResolution{}, nil
		}
		return domain.LinkResolution{}, err
	}
	return domain.LinkResolution{Found: true, Posting: cp}, nil
}

// ledgerMutation edits each affected party's full posting list in memory
// before the running balances are recomputed.
type ledgerMutation struct {
	partyIDs []string
	apply    func(partyID string, postings []domain.Posting) []domain.Posting
}

// rebalanceParties loads each affected party's full ledger, applies the
// mutation, and recomputes every running balance oldest first.
func (s *ledgerService) rebalanceParties(ctx context.Context, m ledgerMutation) ([]domain.Posting, error) {
	var rebalanced []domain.Posting
	for _, partyID := range m.partyIDs {
		postings, err := s.postingRepo.ListPostingsByParty(ctx, partyID)
		if err != nil {
			return nil, err
		}
		postings = m.apply(partyID, postings)
		rebalanced = append(rebalanced, moneymath.RecalculateRunningBalances(postings)...)
	}
	return rebalanced, nil
}

func applyInsert(inserted []domain.Posting) ledgerMutation {
	return ledgerMutation{
		partyIDs: partyIDsOf(inserted),
		apply: func(partyID string, postings []domain.Posting) []domain.Posting {
			for _, p := range inserted {
				if p.PartyID == partyID {
					postings = append(postings, p)
				}
			}
			return postings
		},
	}
}

func applyUpdate(updated []domain.Posting) ledgerMutation {
	byID := make(map[string]domain.Posting, len(updated))
	for _, p := range updated {
		byID[p.PostingID] = p
	}
	return ledgerMutation{
		partyIDs: partyIDsOf(updated),
		apply: func(partyID string, postings []domain.Posting) []domain.Posting {
			for i := range postings {
				if p, ok := byID[postings[i].PostingID]; ok {
					postings[i] = p
				}
			}
			return postings
		},
	}
}

func applyDelete(removed []domain.Posting) ledgerMutation {
	drop := make(map[string]struct{}, len(removed))
	for _, p := range removed {
		drop[p.PostingID] = struct{}{}
	}
	return ledgerMutation{
		partyIDs: partyIDsOf(removed),
		apply: func(partyID string, postings []domain.Posting) []domain.Posting {
			kept := postings[:0]
			for _, p := range postings {
				if _, gone := drop[p.PostingID]; !gone {
					kept = append(kept, p)
				}
			}
			return kept
		},
	}
}

func partyIDsOf(postings []domain.Posting) []string {
	seen := make(map[string]struct{}, len(postings))
	ids := make([]string, 0, len(postings))
	for _, p := range postings {
		if _, ok := seen[p.PartyID]; !ok {
			seen[p.PartyID] = struct{}{}
			ids = append(ids, p.PartyID)
		}
	}
	return ids
}

func validateAmounts(debit, credit decimal.Decimal) error {
	if debit.IsNegative() || credit.IsNegative() {
		return ErrNegativeAmount
	}
	if debit.IsZero() && credit.IsZero() {
		return ErrNoAmount
	}
	return nil
}
