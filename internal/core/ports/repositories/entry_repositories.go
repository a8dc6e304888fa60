package repositories

import (
	"context"
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
)

// EntryReader defines read operations for outstanding entries
type EntryReader interface {
	// FindEntryByID retrieves a specific entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.OutstandingEntry, error)

	// FindEntriesBySrNos retrieves a party's entries keyed by serial number.
	FindEntriesBySrNos(ctx context.Context, partyID string, srNos []string) (map[string]domain.OutstandingEntry, error)

	// ListOutstandingByParty retrieves the party's entries that still carry
	// an outstanding amount, ordered by due date ascending (oldest due
	// first), excluding soft-deleted rows.
	ListOutstandingByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error)

	// ListEntriesByParty retrieves all of a party's entries regardless of
	// settlement state, excluding soft-deleted rows.
	ListEntriesByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error)
}

// EntryWriter defines write operations for outstanding entries
type EntryWriter interface {
	// SaveEntry persists a new entry.
	SaveEntry(ctx context.Context, entry domain.OutstandingEntry) error

	// UpdateEntry updates an existing entry's details.
	UpdateEntry(ctx context.Context, entry domain.OutstandingEntry) error

	// SoftDeleteEntry marks an entry deleted without removing the row.
	SoftDeleteEntry(ctx context.Context, entryID string, userID string, now time.Time) error
}

// EntryRepositoryFacade combines all entry-related repository interfaces.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}
