package services

import (
	"context"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/dto"
)

// EntryReaderSvc defines read operations for outstanding entries
type EntryReaderSvc interface {
	// GetEntryByID retrieves a specific entry by its ID.
	GetEntryByID(ctx context.Context, entryID string) (*domain.OutstandingEntry, error)

	// ListOutstandingByParty retrieves a party's unsettled entries,
	// oldest due date first.
	ListOutstandingByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error)

	// ListEntriesByParty retrieves all of a party's entries, settled
	// ones included.
	ListEntriesByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error)
}

// EntryWriterSvc defines write operations for outstanding entries
type EntryWriterSvc interface {
	// CreateEntry persists a new outstanding entry.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest) (*domain.OutstandingEntry, error)

	// UpdateEntry updates entry details that do not affect paid amounts.
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest) (*domain.OutstandingEntry, error)

	// DeleteEntry soft-deletes an entry. Entries with recorded payments
	// cannot be deleted.
	DeleteEntry(ctx context.Context, entryID string) error
}

// EntrySvcFacade combines all entry-related service interfaces
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}

// PaymentReaderSvc defines read operations for payments
type PaymentReaderSvc interface {
	// GetPaymentByID retrieves a payment with its allocation lines.
	GetPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPaymentsByParty retrieves a paginated list of a party's payments.
	ListPaymentsByParty(ctx context.Context, partyID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)
}

// PaymentWriterSvc defines write operations for payments. Each mutation
// applies or reverses allocations against the party's outstanding entries
// atomically.
type PaymentWriterSvc interface {
	// CreatePayment records a payment and allocates it oldest-due first.
	CreatePayment(ctx context.Context, req dto.CreatePaymentRequest) (*domain.Payment, error)

	// UpdatePayment reverses the payment's prior allocation and reapplies
	// the new payload under the same payment identity.
	UpdatePayment(ctx context.Context, paymentID string, req dto.UpdatePaymentRequest) (*domain.Payment, error)

	// DeletePayment removes a payment and restores the entries it settled.
	DeletePayment(ctx context.Context, paymentID string) error
}

// PaymentSvcFacade combines all payment-related service interfaces
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
