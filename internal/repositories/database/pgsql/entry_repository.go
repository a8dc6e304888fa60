package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firmbooks/trade_books_app/internal/apperrors"
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	portsrepo "github.com/firmbooks/trade_books_app/internal/core/ports/repositories"
	"github.com/firmbooks/trade_books_app/internal/models"
	"github.com/firmbooks/trade_books_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, party_id, sr_no, original_net_amount, net_amount, total_paid, total_cd, due_date, rate, net_quantity, final_quantity, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new repository for outstanding entry data.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryFacade {
	return &PgxEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)

func scanEntry(row pgx.Row) (models.OutstandingEntry, error) {
	var m models.OutstandingEntry
	err := row.Scan(
		&m.EntryID,
		&m.PartyID,
		&m.SrNo,
		&m.OriginalNetAmount,
		&m.NetAmount,
		&m.TotalPaid,
		&m.TotalCD,
		&m.DueDate,
		&m.Rate,
		&m.NetQuantity,
		&m.FinalQuantity,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveEntry inserts a new entry.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.OutstandingEntry) error {
	m := mapping.ToModelEntry(entry)

	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.EntryID, m.PartyID, m.SrNo,
		m.OriginalNetAmount, m.NetAmount, m.TotalPaid, m.TotalCD,
		m.DueDate, m.Rate, m.NetQuantity, m.FinalQuantity,
		m.DeletedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: entry %s already exists for party %s", apperrors.ErrDuplicate, m.SrNo, m.PartyID)
		}
		return fmt.Errorf("failed to save entry %s: %w", m.EntryID, err)
	}
	return nil
}

// FindEntryByID retrieves an entry by its ID. Soft-deleted entries are not
// returned.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.OutstandingEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE entry_id = $1 AND deleted_at IS NULL;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// FindEntriesBySrNos retrieves a party's entries keyed by serial number.
func (r *PgxEntryRepository) FindEntriesBySrNos(ctx context.Context, partyID string, srNos []string) (map[string]domain.OutstandingEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE party_id = $1 AND sr_no = ANY($2) AND deleted_at IS NULL;`

	rows, err := r.Pool.Query(ctx, query, partyID, srNos)
	if err != nil {
		return nil, fmt.Errorf("failed to find entries by sr_no for party %s: %w", partyID, err)
	}
	defer rows.Close()

	result := make(map[string]domain.OutstandingEntry, len(srNos))
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		result[m.SrNo] = mapping.ToDomainEntry(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows for party %s: %w", partyID, err)
	}
	return result, nil
}

// ListOutstandingByParty retrieves the party's entries that still carry an
// outstanding amount, oldest due date first.
func (r *PgxEntryRepository) ListOutstandingByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE party_id = $1 AND deleted_at IS NULL AND original_net_amount - total_paid - total_cd > 0
		ORDER BY due_date ASC, created_at ASC;
	`
	return r.listEntries(ctx, query, partyID)
}

// ListEntriesByParty retrieves all of a party's entries regardless of
// settlement state.
func (r *PgxEntryRepository) ListEntriesByParty(ctx context.Context, partyID string) ([]domain.OutstandingEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE party_id = $1 AND deleted_at IS NULL
		ORDER BY due_date ASC, created_at ASC;
	`
	return r.listEntries(ctx, query, partyID)
}

func (r *PgxEntryRepository) listEntries(ctx context.Context, query string, partyID string) ([]domain.OutstandingEntry, error) {
	rows, err := r.Pool.Query(ctx, query, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for party %s: %w", partyID, err)
	}
	defer rows.Close()

	var entries []models.OutstandingEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows for party %s: %w", partyID, err)
	}
	return mapping.ToDomainEntrySlice(entries), nil
}

// UpdateEntry updates an existing entry's details and totals.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.OutstandingEntry) error {
	m := mapping.ToModelEntry(entry)

	query := `
		UPDATE entries
		SET original_net_amount = $2, net_amount = $3, total_paid = $4, total_cd = $5,
		    due_date = $6, rate = $7, net_quantity = $8, final_quantity = $9,
		    last_updated_at = $10, last_updated_by = $11
		WHERE entry_id = $1 AND deleted_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.EntryID,
		m.OriginalNetAmount, m.NetAmount, m.TotalPaid, m.TotalCD,
		m.DueDate, m.Rate, m.NetQuantity, m.FinalQuantity,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", m.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, m.EntryID)
	}
	return nil
}

// SoftDeleteEntry marks an entry deleted without removing the row.
func (r *PgxEntryRepository) SoftDeleteEntry(ctx context.Context, entryID string, userID string, now time.Time) error {
	query := `
		UPDATE entries
		SET deleted_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND deleted_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query, entryID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
	}
	return nil
}
