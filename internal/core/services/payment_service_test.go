package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	portssvc "github.com/firmbooks/trade_books_app/internal/core/ports/services"
	"github.com/firmbooks/trade_books_app/internal/core/services"
	"github.com/firmbooks/trade_books_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	paymentRepo *MockPaymentRepository
	entryRepo   *MockEntryRepository
	partyRepo   *MockPartyRepository
	service     portssvc.PaymentSvcFacade
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.paymentRepo = new(MockPaymentRepository)
	s.entryRepo = new(MockEntryRepository)
	s.partyRepo = new(MockPartyRepository)
	s.service = services.NewPaymentService(s.paymentRepo, s.entryRepo, s.partyRepo, &seqIDGen{})
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func openEntry(srNo string, amount int64, dueDate time.Time) domain.OutstandingEntry {
	amt := decimal.NewFromInt(amount)
	return domain.OutstandingEntry{
		EntryID:           "e-" + srNo,
		PartyID:           "party-1",
		SrNo:              srNo,
		OriginalNetAmount: amt,
		NetAmount:         amt,
		TotalPaid:         decimal.Zero,
		TotalCD:           decimal.Zero,
		DueDate:           dueDate,
		AuditFields:       domain.AuditFields{CreatedAt: dueDate.AddDate(0, -1, 0)},
	}
}

func (s *PaymentServiceTestSuite) expectParty() {
	s.partyRepo.On("FindPartyByID", s.ctx, "party-1").Return(activeParty("party-1"), nil)
}

func (s *PaymentServiceTestSuite) TestCreatePaymentWithDiscountSplitsLines() {
	due1 := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	due2 := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	entries := []domain.OutstandingEntry{
		openEntry("INV-1", 6000, due1),
		openEntry("INV-2", 4000, due2),
	}

	s.expectParty()
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").Return(entries, nil)

	var savedPayment domain.Payment
	var savedEntries []domain.OutstandingEntry
	s.paymentRepo.On("SavePayment", s.ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedPayment = args.Get(1).(domain.Payment)
			savedEntries = args.Get(2).([]domain.OutstandingEntry)
		}).
		Return(nil)

	payment, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{
		PartyID:      "party-1",
		PaymentType:  "Full",
		Channel:      "Online",
		Amount:       decimal.NewFromInt(9800),
		Date:         time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		DiscountMode: "partial_on_paid",
		DiscountPct:  decimal.NewFromInt(2),
	})

	s.Require().NoError(err)
	s.True(payment.CDApplied)
	s.True(payment.Amount.Equal(decimal.NewFromInt(9800)))
	s.True(payment.CDAmount.Equal(decimal.NewFromInt(200)), "2%% of the 10000 outstanding, got %s", payment.CDAmount)

	s.Require().Len(savedPayment.PaidFor, 2)
	first, second := savedPayment.PaidFor[0], savedPayment.PaidFor[1]
	s.Equal("INV-1", first.SrNo, "oldest due date first")
	s.True(first.Amount.Equal(decimal.NewFromInt(5880)), "got %s", first.Amount)
	s.True(first.CDAmount.Equal(decimal.NewFromInt(120)), "got %s", first.CDAmount)
	s.True(second.Amount.Equal(decimal.NewFromInt(3920)), "got %s", second.Amount)
	s.True(second.CDAmount.Equal(decimal.NewFromInt(80)), "got %s", second.CDAmount)

	// Line sums reconcile with the payment header.
	cashSum := first.Amount.Add(second.Amount)
	cdSum := first.CDAmount.Add(second.CDAmount)
	s.True(cashSum.Equal(payment.Amount))
	s.True(cdSum.Equal(payment.CDAmount))

	s.Require().Len(savedEntries, 2)
	for _, e := range savedEntries {
		s.True(e.IsSettled(), "entry %s should be fully settled, outstanding %s", e.SrNo, e.Outstanding())
	}
}

func (s *PaymentServiceTestSuite) TestCreatePaymentAllocatesOldestFirst() {
	due1 := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	due2 := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	entries := []domain.OutstandingEntry{
		// Listed newest first to prove the service re-sorts by due date.
		openEntry("INV-2", 4000, due2),
		openEntry("INV-1", 6000, due1),
	}

	s.expectParty()
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").Return(entries, nil)

	var savedPayment domain.Payment
	var savedEntries []domain.OutstandingEntry
	s.paymentRepo.On("SavePayment", s.ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedPayment = args.Get(1).(domain.Payment)
			savedEntries = args.Get(2).([]domain.OutstandingEntry)
		}).
		Return(nil)

	_, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{
		PartyID:     "party-1",
		PaymentType: "Partial",
		Channel:     "Cash",
		Amount:      decimal.NewFromInt(2500),
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	s.Require().NoError(err)
	s.Require().Len(savedPayment.PaidFor, 1)
	s.Equal("INV-1", savedPayment.PaidFor[0].SrNo)
	s.True(savedPayment.PaidFor[0].Amount.Equal(decimal.NewFromInt(2500)))
	s.False(savedPayment.CDApplied)

	s.Require().Len(savedEntries, 1)
	s.True(savedEntries[0].Outstanding().Equal(decimal.NewFromInt(3500)), "got %s", savedEntries[0].Outstanding())
}

func (s *PaymentServiceTestSuite) TestCreatePaymentAcceptsExcessOverPool() {
	entries := []domain.OutstandingEntry{
		openEntry("INV-1", 1000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)),
	}

	s.expectParty()
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").Return(entries, nil)

	var savedPayment domain.Payment
	s.paymentRepo.On("SavePayment", s.ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedPayment = args.Get(1).(domain.Payment)
		}).
		Return(nil)

	payment, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{
		PartyID:     "party-1",
		PaymentType: "Full",
		Channel:     "RTGS",
		Amount:      decimal.NewFromInt(1500),
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	s.Require().NoError(err)
	s.True(payment.Amount.Equal(decimal.NewFromInt(1500)), "header keeps the full transferred amount")
	s.Require().Len(savedPayment.PaidFor, 1)
	s.True(savedPayment.PaidFor[0].Amount.Equal(decimal.NewFromInt(1000)), "only the pool's worth is allocated")
}

func (s *PaymentServiceTestSuite) TestCreatePaymentRejectsPartialOverPool() {
	entries := []domain.OutstandingEntry{
		openEntry("INV-1", 1000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)),
	}

	s.expectParty()
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").Return(entries, nil)

	_, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{
		PartyID:     "party-1",
		PaymentType: "Partial",
		Channel:     "Cash",
		Amount:      decimal.NewFromInt(5000),
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})

	s.ErrorIs(err, services.ErrPartialExceedsOutstanding)
	s.paymentRepo.AssertNotCalled(s.T(), "SavePayment", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestCreatePaymentOfficialChannelAdjustsOriginal() {
	entries := []domain.OutstandingEntry{
		openEntry("INV-1", 5000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)),
	}

	s.expectParty()
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").Return(entries, nil)

	var savedPayment domain.Payment
	var savedEntries []domain.OutstandingEntry
	s.paymentRepo.On("SavePayment", s.ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedPayment = args.Get(1).(domain.Payment)
			savedEntries = args.Get(2).([]domain.OutstandingEntry)
		}).
		Return(nil)

	_, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{
		PartyID:     "party-1",
		PaymentType: "Full",
		Channel:     "Gov.",
		Amount:      decimal.NewFromInt(5250),
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EntrySrNos:  []string{"INV-1"},
		ExtraAmounts: map[string]decimal.Decimal{
			"INV-1": decimal.NewFromInt(250),
		},
	})

	s.Require().NoError(err)
	s.Require().Len(savedPayment.PaidFor, 1)
	line := savedPayment.PaidFor[0]
	s.Require().NotNil(line.AdjustedOriginal)
	s.True(line.AdjustedOriginal.Equal(decimal.NewFromInt(5250)))
	s.Require().NotNil(line.ExtraAmount)
	s.True(line.ExtraAmount.Equal(decimal.NewFromInt(250)))
	s.True(line.Amount.Equal(decimal.NewFromInt(5250)))

	s.Require().Len(savedEntries, 1)
	s.True(savedEntries[0].OriginalNetAmount.Equal(decimal.NewFromInt(5250)), "entry original raised to the official value")
	s.True(savedEntries[0].IsSettled())
}

func (s *PaymentServiceTestSuite) TestCreatePaymentRejectsNonPositiveAmount() {
	s.expectParty()
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").Return([]domain.OutstandingEntry{}, nil)

	_, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{
		PartyID:     "party-1",
		PaymentType: "Full",
		Channel:     "Cash",
		Amount:      decimal.Zero,
		Date:        time.Now(),
	})
	s.ErrorIs(err, services.ErrPaymentAmountNotPositive)
}

func (s *PaymentServiceTestSuite) TestCreatePaymentRejectsUnknownEntry() {
	s.expectParty()
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").Return([]domain.OutstandingEntry{}, nil)

	_, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{
		PartyID:     "party-1",
		PaymentType: "Full",
		Channel:     "Cash",
		Amount:      decimal.NewFromInt(100),
		Date:        time.Now(),
		EntrySrNos:  []string{"NOPE"},
	})
	s.ErrorIs(err, services.ErrEntryNotSelectable)
}

func (s *PaymentServiceTestSuite) TestCreatePaymentRejectsSettledPool() {
	settled := openEntry("INV-1", 1000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	settled.ApplyAllocation(decimal.NewFromInt(1000), decimal.Zero)

	s.expectParty()
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").Return([]domain.OutstandingEntry{settled}, nil)

	_, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{
		PartyID:     "party-1",
		PaymentType: "Full",
		Channel:     "Cash",
		Amount:      decimal.NewFromInt(100),
		Date:        time.Now(),
	})
	s.ErrorIs(err, services.ErrNothingOutstanding)
}

func (s *PaymentServiceTestSuite) TestUpdatePaymentReversesThenReapplies() {
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	paid := openEntry("INV-1", 6000, due)
	paid.ApplyAllocation(decimal.NewFromInt(2000), decimal.Zero)
	untouched := openEntry("INV-2", 4000, due.AddDate(0, 0, 10))

	existing := &domain.Payment{
		PaymentID:   "pay-1",
		PartyID:     "party-1",
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(2000),
		PaymentType: domain.PaymentPartial,
		Channel:     domain.ChannelCash,
		PaidFor: []domain.Allocation{
			{SrNo: "INV-1", Amount: decimal.NewFromInt(2000), CDAmount: decimal.Zero},
		},
		AuditFields: domain.AuditFields{CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}

	s.paymentRepo.On("FindPaymentByID", s.ctx, "pay-1").Return(existing, nil)
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").
		Return([]domain.OutstandingEntry{paid, untouched}, nil)

	var savedPayment domain.Payment
	var savedEntries []domain.OutstandingEntry
	s.paymentRepo.On("UpdatePayment", s.ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedPayment = args.Get(1).(domain.Payment)
			savedEntries = args.Get(2).([]domain.OutstandingEntry)
		}).
		Return(nil)

	updated, err := s.service.UpdatePayment(s.ctx, "pay-1", dto.UpdatePaymentRequest{
		PaymentType: "Partial",
		Channel:     "Cash",
		Amount:      decimal.NewFromInt(7000),
		Date:        time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})

	s.Require().NoError(err)
	s.Equal("pay-1", updated.PaymentID, "edit keeps the payment identity")
	s.Equal(existing.CreatedAt, updated.CreatedAt)

	// After reversal INV-1 owes 6000 again; 7000 settles it and puts 1000
	// on INV-2.
	s.Require().Len(savedPayment.PaidFor, 2)
	s.Equal("INV-1", savedPayment.PaidFor[0].SrNo)
	s.True(savedPayment.PaidFor[0].Amount.Equal(decimal.NewFromInt(6000)))
	s.Equal("INV-2", savedPayment.PaidFor[1].SrNo)
	s.True(savedPayment.PaidFor[1].Amount.Equal(decimal.NewFromInt(1000)))

	s.Require().Len(savedEntries, 2)
	byID := map[string]domain.OutstandingEntry{}
	for _, e := range savedEntries {
		byID[e.SrNo] = e
	}
	inv1, inv2 := byID["INV-1"], byID["INV-2"]
	s.True(inv1.IsSettled())
	s.True(inv2.Outstanding().Equal(decimal.NewFromInt(3000)), "got %s", inv2.Outstanding())
}

func (s *PaymentServiceTestSuite) TestDeletePaymentRestoresEntries() {
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	paid := openEntry("INV-1", 6000, due)
	paid.ApplyAllocation(decimal.NewFromInt(1960), decimal.NewFromInt(40))

	existing := &domain.Payment{
		PaymentID:   "pay-1",
		PartyID:     "party-1",
		Amount:      decimal.NewFromInt(1960),
		CDAmount:    decimal.NewFromInt(40),
		CDApplied:   true,
		PaymentType: domain.PaymentPartial,
		Channel:     domain.ChannelCash,
		PaidFor: []domain.Allocation{
			{SrNo: "INV-1", Amount: decimal.NewFromInt(1960), CDAmount: decimal.NewFromInt(40), CDApplied: true},
		},
	}

	s.paymentRepo.On("FindPaymentByID", s.ctx, "pay-1").Return(existing, nil)
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").
		Return([]domain.OutstandingEntry{paid}, nil)

	var restoredEntries []domain.OutstandingEntry
	s.paymentRepo.On("DeletePayment", s.ctx, "pay-1", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			restoredEntries = args.Get(2).([]domain.OutstandingEntry)
		}).
		Return(nil)

	err := s.service.DeletePayment(s.ctx, "pay-1")

	s.Require().NoError(err)
	s.Require().Len(restoredEntries, 1)
	restored := restoredEntries[0]
	s.True(restored.TotalPaid.IsZero())
	s.True(restored.TotalCD.IsZero())
	s.True(restored.Outstanding().Equal(decimal.NewFromInt(6000)), "got %s", restored.Outstanding())
}

func (s *PaymentServiceTestSuite) TestManualDiscountOverrideIsClamped() {
	entries := []domain.OutstandingEntry{
		openEntry("INV-1", 1000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)),
	}

	s.expectParty()
	s.entryRepo.On("ListEntriesByParty", s.ctx, "party-1").Return(entries, nil)

	var savedPayment domain.Payment
	s.paymentRepo.On("SavePayment", s.ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedPayment = args.Get(1).(domain.Payment)
		}).
		Return(nil)

	override := decimal.NewFromInt(1500)
	payment, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{
		PartyID:        "party-1",
		PaymentType:    "Full",
		Channel:        "Cash",
		Amount:         decimal.NewFromInt(500),
		Date:           time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DiscountMode:   "on_unpaid_amount",
		DiscountAmount: &override,
	})

	s.Require().NoError(err)
	s.True(payment.CDAmount.Equal(decimal.NewFromInt(1000)), "override clamped to the outstanding, got %s", payment.CDAmount)
	s.True(savedPayment.CDApplied)

	// Discount precedence: the clamped override covers the whole line and
	// the header keeps the cash actually transferred.
	s.True(payment.Amount.Equal(decimal.NewFromInt(500)))
	s.Require().Len(savedPayment.PaidFor, 1)
	s.True(savedPayment.PaidFor[0].CDAmount.Equal(decimal.NewFromInt(1000)), "got %s", savedPayment.PaidFor[0].CDAmount)
	s.True(savedPayment.PaidFor[0].Amount.IsZero(), "got %s", savedPayment.PaidFor[0].Amount)
}
