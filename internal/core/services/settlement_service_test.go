package services_test

import (
	"context"
	"testing"
	"time"

	portssvc "github.com/firmbooks/trade_books_app/internal/core/ports/services"
	"github.com/firmbooks/trade_books_app/internal/core/services"
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/dto"
	"github.com/firmbooks/trade_books_app/internal/utils/receiptpick"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SettlementServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	entryRepo   *MockEntryRepository
	paymentRepo *MockPaymentRepository
	partyRepo   *MockPartyRepository
	service     portssvc.SettlementSvcFacade
}

func (s *SettlementServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.entryRepo = new(MockEntryRepository)
	s.paymentRepo = new(MockPaymentRepository)
	s.partyRepo = new(MockPartyRepository)
	s.service = services.NewSettlementService(s.entryRepo, s.paymentRepo, s.partyRepo, receiptpick.Options{})
}

func TestSettlementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}

func (s *SettlementServiceTestSuite) TestPreviewDiscountEligible() {
	due := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	entries := []domain.OutstandingEntry{
		openEntry("INV-1", 4000, due),
		openEntry("INV-2", 1000, due.AddDate(0, 0, 5)),
	}

	s.partyRepo.On("FindPartyByID", s.ctx, "party-1").Return(activeParty("party-1"), nil)
	s.entryRepo.On("ListOutstandingByParty", s.ctx, "party-1").Return(entries, nil)

	resp, err := s.service.PreviewDiscount(s.ctx, dto.DiscountPreviewRequest{
		PartyID:      "party-1",
		Mode:         "on_unpaid_amount",
		Percent:      decimal.NewFromInt(2),
		PaymentType:  "Full",
		SettleAmount: decimal.NewFromInt(5000),
		Date:         time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
	})

	s.Require().NoError(err)
	s.True(resp.Eligible)
	s.True(resp.Amount.Equal(decimal.NewFromInt(100)), "2%% of 5000, got %s", resp.Amount)
	s.True(resp.ToBePaid.Equal(decimal.NewFromInt(4900)), "got %s", resp.ToBePaid)
	s.True(resp.EffectivePercent.Equal(decimal.NewFromInt(2)))
}

func (s *SettlementServiceTestSuite) TestPreviewDiscountIneligibleWhenAllOverdue() {
	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.OutstandingEntry{openEntry("INV-1", 4000, due)}

	s.partyRepo.On("FindPartyByID", s.ctx, "party-1").Return(activeParty("party-1"), nil)
	s.entryRepo.On("ListOutstandingByParty", s.ctx, "party-1").Return(entries, nil)

	resp, err := s.service.PreviewDiscount(s.ctx, dto.DiscountPreviewRequest{
		PartyID:      "party-1",
		Mode:         "on_unpaid_amount",
		Percent:      decimal.NewFromInt(2),
		PaymentType:  "Full",
		SettleAmount: decimal.NewFromInt(4000),
		Date:         time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
	})

	s.Require().NoError(err)
	s.False(resp.Eligible)
	s.True(resp.Amount.IsZero())
}

func (s *SettlementServiceTestSuite) TestSearchCombinationsReturnsClosestFirst() {
	due := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	pool := []domain.OutstandingEntry{
		openEntry("R-1", 1000, due),
		openEntry("R-2", 1500, due),
		openEntry("R-3", 2200, due),
	}

	s.partyRepo.On("FindPartyByID", s.ctx, "party-1").Return(activeParty("party-1"), nil)
	s.entryRepo.On("ListOutstandingByParty", s.ctx, "party-1").Return(pool, nil)

	resp, err := s.service.SearchCombinations(s.ctx, dto.CombinationSearchRequest{
		PartyID:      "party-1",
		TargetAmount: decimal.NewFromInt(3000),
		OfficialRate: decimal.NewFromInt(100),
	})

	s.Require().NoError(err)
	s.Require().NotEmpty(resp.Combinations)
	best := resp.Combinations[0]
	s.True(best.Difference.Equal(decimal.NewFromInt(200)), "best is {1000, 2200} with 200 over, got %s", best.Difference)
	s.Len(best.Entries, 2)
	for i := 1; i < len(resp.Combinations); i++ {
		s.True(resp.Combinations[i].Difference.Abs().GreaterThanOrEqual(resp.Combinations[i-1].Difference.Abs()),
			"combinations must be ordered by closeness")
	}
}

func (s *SettlementServiceTestSuite) TestSearchCombinationsRejectsNonPositiveTarget() {
	_, err := s.service.SearchCombinations(s.ctx, dto.CombinationSearchRequest{
		PartyID:      "party-1",
		TargetAmount: decimal.Zero,
	})
	s.Require().Error(err)
}
