package repositories

import (
	"context"
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
)

// PaymentReader defines read operations for payments
type PaymentReader interface {
	// FindPaymentByID retrieves a payment with its paidFor lines.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPaymentsByParty retrieves payments newest first with token
	// pagination, lines included.
	ListPaymentsByParty(ctx context.Context, partyID string, limit int, nextToken *string) ([]domain.Payment, *string, error)

	// FindPaymentHistory retrieves every payment of a party, lines
	// included, oldest first. The discount calculator consumes this.
	FindPaymentHistory(ctx context.Context, partyID string) ([]domain.Payment, error)
}

// PaymentWriter defines write operations for payments. A payment and the
// entry-state changes it causes are always written in one database
// transaction, so a half-applied settlement can never be observed.
type PaymentWriter interface {
	// SavePayment inserts a payment with its lines and updates the
	// affected entries.
	SavePayment(ctx context.Context, payment domain.Payment, entries []domain.OutstandingEntry) error

	// UpdatePayment replaces a payment's header and lines in place and
	// updates the affected entries. The payment keeps its identity and
	// creation audit fields.
	UpdatePayment(ctx context.Context, payment domain.Payment, entries []domain.OutstandingEntry) error

	// DeletePayment removes a payment and its lines and updates the
	// affected (restored) entries.
	DeletePayment(ctx context.Context, paymentID string, entries []domain.OutstandingEntry, userID string, now time.Time) error

	// DeletePaymentsForEntry removes every listed payment with its lines,
	// restores the other entries those payments had settled, and
	// soft-deletes the entry itself.
	DeletePaymentsForEntry(ctx context.Context, paymentIDs []string, restored []domain.OutstandingEntry, entryID string, userID string, now time.Time) error
}

// PaymentRepositoryFacade combines all payment-related repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
