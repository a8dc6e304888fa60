package services_test

import (
	"context"
	"fmt"
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/core/ports"
	portsrepo "github.com/firmbooks/trade_books_app/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock PartyRepository ---
type MockPartyRepository struct {
	mock.Mock
}

var _ portsrepo.PartyRepositoryFacade = (*MockPartyRepository)(nil)

func (m *MockPartyRepository) FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyRepository) ListParties(ctx context.Context, limit int, offset int) ([]domain.Party, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Party), args.Error(1)
}

func (m *MockPartyRepository) SaveParty(ctx context.Context, party domain.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) UpdateParty(ctx context.Context, party domain.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) DeactivateParty(ctx context.Context, partyID string, userID string, now time.Time) error {
	args := m.Called(ctx, partyID, userID, now)
	return args.Error(0)
}

// --- Mock PostingRepository ---
type MockPostingRepository struct {
	mock.Mock
}

var _ portsrepo.PostingRepositoryFacade = (*MockPostingRepository)(nil)

func (m *MockPostingRepository) FindPostingByID(ctx context.Context, postingID string) (*domain.Posting, error) {
	args := m.Called(ctx, postingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Posting), args.Error(1)
}

func (m *MockPostingRepository) FindCounterpart(ctx context.Context, linkGroupID string, excludePostingID string) (*domain.Posting, error) {
	args := m.Called(ctx, linkGroupID, excludePostingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Posting), args.Error(1)
}

func (m *MockPostingRepository) ListPostingsByParty(ctx context.Context, partyID string) ([]domain.Posting, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Posting), args.Error(1)
}

func (m *MockPostingRepository) ListPostingsByPartyPaginated(ctx context.Context, partyID string, limit int, nextToken *string) ([]domain.Posting, *string, error) {
	args := m.Called(ctx, partyID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Posting), returnedNextToken, args.Error(2)
}

func (m *MockPostingRepository) SavePostings(ctx context.Context, postings []domain.Posting, rebalanced []domain.Posting) error {
	args := m.Called(ctx, postings, rebalanced)
	return args.Error(0)
}

func (m *MockPostingRepository) UpdatePostings(ctx context.Context, postings []domain.Posting, rebalanced []domain.Posting) error {
	args := m.Called(ctx, postings, rebalanced)
	return args.Error(0)
}

func (m *MockPostingRepository) DeletePostings(ctx context.Context, postingIDs []string, rebalanced []domain.Posting) error {
	args := m.Called(ctx, postingIDs, rebalanced)
	return args.Error(0)
}

// --- Mock EntryRepository ---
type MockEntryRepository struct {
	mock.Mock
}

var _ portsrepo.EntryRepositoryFacade = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.OutstandingEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutstandingEntry), args.Error(1)
}

func (m *MockEntryRepository) FindEntriesBySrNos(ctx context.Context, partyID string, srNos []string) (map[string]domain.OutstandingEntry, error) {
	args := m.Called(ctx, partyID, srNos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.OutstandingEntry), args.Error(1)
}

func (m *MockEntryRepository) ListOutstandingByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutstandingEntry), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutstandingEntry), args.Error(1)
}

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry domain.OutstandingEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateEntry(ctx context.Context, entry domain.OutstandingEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) SoftDeleteEntry(ctx context.Context, entryID string, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, userID, now)
	return args.Error(0)
}

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

var _ portsrepo.PaymentRepositoryFacade = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPaymentsByParty(ctx context.Context, partyID string, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	args := m.Called(ctx, partyID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Payment), returnedNextToken, args.Error(2)
}

func (m *MockPaymentRepository) FindPaymentHistory(ctx context.Context, partyID string) ([]domain.Payment, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment, entries []domain.OutstandingEntry) error {
	args := m.Called(ctx, payment, entries)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePayment(ctx context.Context, payment domain.Payment, entries []domain.OutstandingEntry) error {
	args := m.Called(ctx, payment, entries)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeletePayment(ctx context.Context, paymentID string, entries []domain.OutstandingEntry, userID string, now time.Time) error {
	args := m.Called(ctx, paymentID, entries, userID, now)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeletePaymentsForEntry(ctx context.Context, paymentIDs []string, restored []domain.OutstandingEntry, entryID string, userID string, now time.Time) error {
	args := m.Called(ctx, paymentIDs, restored, entryID, userID, now)
	return args.Error(0)
}

// --- Sequential id generator for deterministic tests ---
type seqIDGen struct {
	n int
}

var _ ports.IDGenerator = (*seqIDGen)(nil)

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}
