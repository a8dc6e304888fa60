package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/firmbooks/trade_books_app/internal/apperrors"
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	portsrepo "github.com/firmbooks/trade_books_app/internal/core/ports/repositories"
	"github.com/firmbooks/trade_books_app/internal/models"
	"github.com/firmbooks/trade_books_app/internal/utils/mapping"
	"github.com/firmbooks/trade_books_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postingColumns = `posting_id, party_id, date, description, debit, credit, running_balance, link_group_id, link_strategy, created_at, created_by, last_updated_at, last_updated_by`

type PgxPostingRepository struct {
	BaseRepository
}

// newPgxPostingRepository creates a new repository for ledger posting data.
func newPgxPostingRepository(pool *pgxpool.Pool) portsrepo.PostingRepositoryFacade {
	return &PgxPostingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PostingRepositoryFacade = (*PgxPostingRepository)(nil)

func scanPosting(row pgx.Row) (models.Posting, error) {
	var m models.Posting
	err := row.Scan(
		&m.PostingID,
		&m.PartyID,
		&m.Date,
		&m.Description,
		&m.Debit,
		&m.Credit,
		&m.RunningBalance,
		&m.LinkGroupID,
		&m.LinkStrategy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindPostingByID retrieves a posting by its ID.
func (r *PgxPostingRepository) FindPostingByID(ctx context.Context, postingID string) (*domain.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE posting_id = $1;`

	m, err := scanPosting(r.Pool.QueryRow(ctx, query, postingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: posting %s", apperrors.ErrNotFound, postingID)
		}
		return nil, fmt.Errorf("failed to find posting %s: %w", postingID, err)
	}
	posting := mapping.ToDomainPosting(m)
	return &posting, nil
}

// FindCounterpart retrieves the other posting of a link group.
func (r *PgxPostingRepository) FindCounterpart(ctx context.Context, linkGroupID string, excludePostingID string) (*domain.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE link_group_id = $1 AND posting_id <> $2;`

	m, err := scanPosting(r.Pool.QueryRow(ctx, query, linkGroupID, excludePostingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: counterpart of link group %s", apperrors.ErrNotFound, linkGroupID)
		}
		return nil, fmt.Errorf("failed to find counterpart for link group %s: %w", linkGroupID, err)
	}
	posting := mapping.ToDomainPosting(m)
	return &posting, nil
}

// ListPostingsByParty retrieves every posting of a party, oldest first.
// Balance recomputation always works on this full list.
func (r *PgxPostingRepository) ListPostingsByParty(ctx context.Context, partyID string) ([]domain.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE party_id = $1 ORDER BY date ASC, created_at ASC;`

	rows, err := r.Pool.Query(ctx, query, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list postings for party %s: %w", partyID, err)
	}
	defer rows.Close()

	var postings []models.Posting
	for rows.Next() {
		m, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posting row: %w", err)
		}
		postings = append(postings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posting rows for party %s: %w", partyID, err)
	}
	return mapping.ToDomainPostingSlice(postings), nil
}

// ListPostingsByPartyPaginated retrieves postings newest first for display,
// using token-based pagination.
func (r *PgxPostingRepository) ListPostingsByPartyPaginated(ctx context.Context, partyID string, limit int, nextToken *string) ([]domain.Posting, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	baseQuery := `SELECT ` + postingColumns + ` FROM postings WHERE party_id = $1`
	orderByClause := ` ORDER BY date DESC, created_at DESC`
	args := []interface{}{partyID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		baseQuery += ` AND (date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)
	}
	// Fetch one extra row to detect whether a next page exists.
	baseQuery += orderByClause + fmt.Sprintf(` LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list postings for party %s: %w", partyID, err)
	}
	defer rows.Close()

	var postings []models.Posting
	for rows.Next() {
		m, err := scanPosting(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan posting row: %w", err)
		}
		postings = append(postings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating posting rows for party %s: %w", partyID, err)
	}

	var nextTokenVal *string
	if len(postings) > limit {
		last := postings[limit-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt)
		nextTokenVal = &token
		postings = postings[:limit]
	}
	return mapping.ToDomainPostingSlice(postings), nextTokenVal, nil
}

// SavePostings inserts new postings and persists the recomputed running
// balances of the affected parties in one transaction.
func (r *PgxPostingRepository) SavePostings(ctx context.Context, postings []domain.Posting, rebalanced []domain.Posting) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	insertQuery := `
		INSERT INTO postings (` + postingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	batch := &pgx.Batch{}
	for _, p := range postings {
		m := mapping.ToModelPosting(p)
		batch.Queue(insertQuery,
			m.PostingID, m.PartyID, m.Date, m.Description,
			m.Debit, m.Credit, m.RunningBalance,
			m.LinkGroupID, m.LinkStrategy,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
	}
	queueBalanceUpdates(batch, rebalanced)

	if err := flushBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("failed to save postings: %w", err)
	}
	return r.Commit(ctx, tx)
}

// UpdatePostings updates existing postings and persists the recomputed
// running balances in one transaction.
func (r *PgxPostingRepository) UpdatePostings(ctx context.Context, postings []domain.Posting, rebalanced []domain.Posting) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	updateQuery := `
		UPDATE postings
		SET date = $2, description = $3, debit = $4, credit = $5, last_updated_at = $6, last_updated_by = $7
		WHERE posting_id = $1;
	`
	batch := &pgx.Batch{}
	for _, p := range postings {
		m := mapping.ToModelPosting(p)
		batch.Queue(updateQuery,
			m.PostingID, m.Date, m.Description,
			m.Debit, m.Credit,
			m.LastUpdatedAt, m.LastUpdatedBy,
		)
	}
	queueBalanceUpdates(batch, rebalanced)

	if err := flushBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("failed to update postings: %w", err)
	}
	return r.Commit(ctx, tx)
}

// DeletePostings removes postings by id and persists the recomputed running
// balances of the remaining rows in one transaction.
func (r *PgxPostingRepository) DeletePostings(ctx context.Context, postingIDs []string, rebalanced []domain.Posting) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	for _, id := range postingIDs {
		batch.Queue(`DELETE FROM postings WHERE posting_id = $1;`, id)
	}
	queueBalanceUpdates(batch, rebalanced)

	if err := flushBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("failed to delete postings: %w", err)
	}
	return r.Commit(ctx, tx)
}

// queueBalanceUpdates appends a running balance write for every rebalanced
// row. The primary insert/update statements run first in the same batch, so
// freshly inserted rows get their balance here too.
func queueBalanceUpdates(batch *pgx.Batch, rebalanced []domain.Posting) {
	balanceQuery := `UPDATE postings SET running_balance = $2 WHERE posting_id = $1;`
	for _, p := range rebalanced {
		batch.Queue(balanceQuery, p.PostingID, p.RunningBalance)
	}
}

// flushBatch sends a batch and surfaces the first per-statement error.
func flushBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}
