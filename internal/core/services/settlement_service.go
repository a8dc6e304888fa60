package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firmbooks/trade_books_app/internal/apperrors"
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	portsrepo "github.com/firmbooks/trade_books_app/internal/core/ports/repositories"
	portssvc "github.com/firmbooks/trade_books_app/internal/core/ports/services"
	"github.com/firmbooks/trade_books_app/internal/dto"
	"github.com/firmbooks/trade_books_app/internal/middleware"
	"github.com/firmbooks/trade_books_app/internal/utils/cashdiscount"
	"github.com/firmbooks/trade_books_app/internal/utils/receiptpick"
	"github.com/shopspring/decimal"
)

// settlementService provides the read-only settlement helpers: discount
// previews and official-channel receipt combination search.
type settlementService struct {
	entryRepo   portsrepo.EntryRepositoryFacade
	paymentRepo portsrepo.PaymentRepositoryFacade
	partyRepo   portsrepo.PartyRepositoryFacade
	searchOpts  receiptpick.Options
}

// NewSettlementService creates a new SettlementService. searchOpts bounds
// the combination search; zero fields fall back to defaults.
func NewSettlementService(entryRepo portsrepo.EntryRepositoryFacade, paymentRepo portsrepo.PaymentRepositoryFacade, partyRepo portsrepo.PartyRepositoryFacade, searchOpts receiptpick.Options) portssvc.SettlementSvcFacade {
	return &settlementService{
		entryRepo:   entryRepo,
		paymentRepo: paymentRepo,
		partyRepo:   partyRepo,
		searchOpts:  searchOpts,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// PreviewDiscount computes the cash discount a hypothetical payment would
// earn against the party's current outstanding entries. Nothing is written.
func (s *settlementService) PreviewDiscount(ctx context.Context, req dto.DiscountPreviewRequest) (*dto.DiscountPreviewResponse, error) {
	selection, err := s.selectOutstanding(ctx, req.PartyID, req.EntrySrNos)
	if err != nil {
		return nil, err
	}

	totalOutstanding := decimal.Zero
	for _, e := range selection {
		totalOutstanding = totalOutstanding.Add(e.Outstanding())
	}

	if !cashdiscount.Eligible(selection, req.Date) {
		return &dto.DiscountPreviewResponse{
			Eligible:     false,
			MaxAvailable: totalOutstanding,
			ToBePaid:     totalOutstanding,
		}, nil
	}

	var history []domain.Payment
	mode := cashdiscount.Mode(req.Mode)
	if mode == cashdiscount.ModeOnPreviouslyPaidNoCD {
		history, err = s.paymentRepo.FindPaymentHistory(ctx, req.PartyID)
		if err != nil {
			return nil, err
		}
	}

	result := cashdiscount.Compute(cashdiscount.Input{
		Mode:             mode,
		Percent:          req.Percent,
		Entries:          selection,
		PaymentType:      domain.PaymentType(req.PaymentType),
		SettleAmount:     req.SettleAmount,
		ToBePaid:         req.SettleAmount,
		TotalOutstanding: totalOutstanding,
		PaymentDate:      req.Date,
		History:          history,
	})

	return &dto.DiscountPreviewResponse{
		Eligible:         true,
		Amount:           result.Amount,
		Base:             result.Base,
		Offset:           result.Offset,
		MaxAvailable:     result.MaxAvailable,
		EffectivePercent: cashdiscount.PercentForAmount(result.Amount, result.Base),
		ToBePaid:         totalOutstanding.Sub(result.Amount),
	}, nil
}

// SearchCombinations proposes receipt subsets whose surcharged totals come
// closest to the target official amount, closest first.
func (s *settlementService) SearchCombinations(ctx context.Context, req dto.CombinationSearchRequest) (*dto.CombinationSearchResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: target amount must be positive, got %s", apperrors.ErrValidation, req.TargetAmount)
	}

	pool, err := s.selectOutstanding(ctx, req.PartyID, req.EntrySrNos)
	if err != nil {
		return nil, err
	}

	cfg := receiptpick.Config{
		OfficialRate:     req.OfficialRate,
		ExtraRatePerUnit: req.ExtraRatePerUnit,
		Base:             receiptpick.BaseMode(req.Base),
		Compounded:       req.Compounded,
	}
	combos := receiptpick.Search(pool, req.TargetAmount, cfg, s.searchOpts)

	opts := s.searchOpts
	if opts.ResultCap <= 0 {
		opts = receiptpick.DefaultOptions()
	}
	truncated := len(combos) >= opts.ResultCap
	logger.Debug("Combination search finished",
		slog.String("party_id", req.PartyID),
		slog.Int("pool_size", len(pool)),
		slog.Int("combinations", len(combos)),
		slog.Bool("truncated", truncated),
	)

	return &dto.CombinationSearchResponse{
		Combinations: dto.ToCombinationResponses(combos, cfg),
		Truncated:    truncated,
	}, nil
}

// selectOutstanding loads the party's outstanding entries, filtered to the
// requested serial numbers when given.
func (s *settlementService) selectOutstanding(ctx context.Context, partyID string, srNos []string) ([]domain.OutstandingEntry, error) {
	if _, err := s.partyRepo.FindPartyByID(ctx, partyID); err != nil {
		return nil, err
	}

	if len(srNos) > 0 {
		bySrNo, err := s.entryRepo.FindEntriesBySrNos(ctx, partyID, srNos)
		if err != nil {
			return nil, err
		}
		selection := make([]domain.OutstandingEntry, 0, len(srNos))
		for _, srNo := range srNos {
			e, ok := bySrNo[srNo]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrEntryNotSelectable, srNo)
			}
			selection = append(selection, e)
		}
		return selection, nil
	}
	return s.entryRepo.ListOutstandingByParty(ctx, partyID)
}
