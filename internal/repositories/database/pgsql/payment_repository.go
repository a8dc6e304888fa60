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
	"github.com/firmbooks/trade_books_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `payment_id, party_id, date, amount, cd_amount, cd_applied, payment_type, channel, description, created_at, created_by, last_updated_at, last_updated_by`
const paymentLineColumns = `payment_id, line_no, sr_no, amount, cd_amount, cd_applied, adjusted_original, extra_amount`

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

func scanPayment(row pgx.Row) (models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.PartyID,
		&m.Date,
		&m.Amount,
		&m.CDAmount,
		&m.CDApplied,
		&m.PaymentType,
		&m.Channel,
		&m.Description,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindPaymentByID retrieves a payment with its paidFor lines.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`

	m, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}

	lines, err := r.findLines(ctx, []string{paymentID})
	if err != nil {
		return nil, err
	}
	payment := mapping.ToDomainPayment(m, lines[paymentID])
	return &payment, nil
}

// ListPaymentsByParty retrieves payments newest first with token-based
// pagination, lines included.
func (r *PgxPaymentRepository) ListPaymentsByParty(ctx context.Context, partyID string, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	baseQuery := `SELECT ` + paymentColumns + ` FROM payments WHERE party_id = $1`
	args := []interface{}{partyID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		baseQuery += ` AND (date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)
	}
	baseQuery += ` ORDER BY date DESC, created_at DESC` + fmt.Sprintf(` LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, baseQuery, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list payments for party %s: %w", partyID, err)
	}
	defer rows.Close()

	var headers []models.Payment
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		headers = append(headers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating payment rows for party %s: %w", partyID, err)
	}

	var nextTokenVal *string
	if len(headers) > limit {
		last := headers[limit-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt)
		nextTokenVal = &token
		headers = headers[:limit]
	}

	paymentIDs := make([]string, len(headers))
	for i, h := range headers {
		paymentIDs[i] = h.PaymentID
	}
	lines, err := r.findLines(ctx, paymentIDs)
	if err != nil {
		return nil, nil, err
	}

	payments := make([]domain.Payment, len(headers))
	for i, h := range headers {
		payments[i] = mapping.ToDomainPayment(h, lines[h.PaymentID])
	}
	return payments, nextTokenVal, nil
}

// FindPaymentHistory retrieves every payment of a party, lines included,
// oldest first. The discount calculator consumes this.
func (r *PgxPaymentRepository) FindPaymentHistory(ctx context.Context, partyID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE party_id = $1 ORDER BY date ASC, created_at ASC;`

	rows, err := r.Pool.Query(ctx, query, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment history for party %s: %w", partyID, err)
	}
	defer rows.Close()

	var headers []models.Payment
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		headers = append(headers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows for party %s: %w", partyID, err)
	}

	paymentIDs := make([]string, len(headers))
	for i, h := range headers {
		paymentIDs[i] = h.PaymentID
	}
	lines, err := r.findLines(ctx, paymentIDs)
	if err != nil {
		return nil, err
	}

	payments := make([]domain.Payment, len(headers))
	for i, h := range headers {
		payments[i] = mapping.ToDomainPayment(h, lines[h.PaymentID])
	}
	return payments, nil
}

// findLines loads paidFor lines for the given payments, keyed by payment id
// and ordered by line_no.
func (r *PgxPaymentRepository) findLines(ctx context.Context, paymentIDs []string) (map[string][]models.PaymentLine, error) {
	result := make(map[string][]models.PaymentLine, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + paymentLineColumns + ` FROM payment_lines WHERE payment_id = ANY($1) ORDER BY payment_id, line_no;`
	rows, err := r.Pool.Query(ctx, query, paymentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.PaymentLine
		if err := rows.Scan(
			&m.PaymentID,
			&m.LineNo,
			&m.SrNo,
			&m.Amount,
			&m.CDAmount,
			&m.CDApplied,
			&m.AdjustedOriginal,
			&m.ExtraAmount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment line row: %w", err)
		}
		result[m.PaymentID] = append(result[m.PaymentID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment line rows: %w", err)
	}
	return result, nil
}

// SavePayment inserts a payment with its lines and updates the affected
// entries, all in one transaction.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment, entries []domain.OutstandingEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertPaymentInTx(ctx, tx, payment); err != nil {
		return err
	}
	if err := updateEntryTotalsInTx(ctx, tx, entries); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdatePayment replaces a payment's header and lines in place and updates
// the affected entries. The payment keeps its identity and creation audit
// fields.
func (r *PgxPaymentRepository) UpdatePayment(ctx context.Context, payment domain.Payment, entries []domain.OutstandingEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelPayment(payment)
	headerQuery := `
		UPDATE payments
		SET date = $2, amount = $3, cd_amount = $4, cd_applied = $5,
		    payment_type = $6, channel = $7, description = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE payment_id = $1;
	`
	tag, err := tx.Exec(ctx, headerQuery,
		m.PaymentID, m.Date, m.Amount, m.CDAmount, m.CDApplied,
		m.PaymentType, m.Channel, m.Description,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", m.PaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, m.PaymentID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM payment_lines WHERE payment_id = $1;`, m.PaymentID); err != nil {
		return fmt.Errorf("failed to clear payment lines for %s: %w", m.PaymentID, err)
	}
	if err := insertPaymentLinesInTx(ctx, tx, payment); err != nil {
		return err
	}
	if err := updateEntryTotalsInTx(ctx, tx, entries); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// DeletePayment removes a payment and its lines and updates the restored
// entries, all in one transaction.
func (r *PgxPaymentRepository) DeletePayment(ctx context.Context, paymentID string, entries []domain.OutstandingEntry, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM payment_lines WHERE payment_id = $1;`, paymentID); err != nil {
		return fmt.Errorf("failed to delete payment lines for %s: %w", paymentID, err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM payments WHERE payment_id = $1;`, paymentID)
	if err != nil {
		return fmt.Errorf("failed to delete payment %s: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
	}

	restoreQuery := `
		UPDATE entries
		SET original_net_amount = $2, net_amount = $3, total_paid = $4, total_cd = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE entry_id = $1;
	`
	for _, e := range entries {
		m := mapping.ToModelEntry(e)
		if _, err := tx.Exec(ctx, restoreQuery,
			m.EntryID, m.OriginalNetAmount, m.NetAmount, m.TotalPaid, m.TotalCD,
			now, userID,
		); err != nil {
			return fmt.Errorf("failed to restore entry %s: %w", m.EntryID, err)
		}
	}
	return r.Commit(ctx, tx)
}

// DeletePaymentsForEntry removes the payments that settled a doomed entry,
// restores the other entries they touched and soft-deletes the entry, all
// in one transaction.
func (r *PgxPaymentRepository) DeletePaymentsForEntry(ctx context.Context, paymentIDs []string, restored []domain.OutstandingEntry, entryID string, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if len(paymentIDs) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM payment_lines WHERE payment_id = ANY($1);`, paymentIDs); err != nil {
			return fmt.Errorf("failed to delete payment lines for entry %s: %w", entryID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE payment_id = ANY($1);`, paymentIDs); err != nil {
			return fmt.Errorf("failed to delete payments for entry %s: %w", entryID, err)
		}
	}

	restoreQuery := `
		UPDATE entries
		SET original_net_amount = $2, net_amount = $3, total_paid = $4, total_cd = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE entry_id = $1;
	`
	for _, e := range restored {
		m := mapping.ToModelEntry(e)
		if _, err := tx.Exec(ctx, restoreQuery,
			m.EntryID, m.OriginalNetAmount, m.NetAmount, m.TotalPaid, m.TotalCD,
			now, userID,
		); err != nil {
			return fmt.Errorf("failed to restore entry %s: %w", m.EntryID, err)
		}
	}

	deleteQuery := `
		UPDATE entries
		SET deleted_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND deleted_at IS NULL;
	`
	tag, err := tx.Exec(ctx, deleteQuery, entryID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
	}
	return r.Commit(ctx, tx)
}

func (r *PgxPaymentRepository) insertPaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := tx.Exec(ctx, query,
		m.PaymentID, m.PartyID, m.Date,
		m.Amount, m.CDAmount, m.CDApplied,
		m.PaymentType, m.Channel, m.Description,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: payment %s already exists", apperrors.ErrDuplicate, m.PaymentID)
		}
		return fmt.Errorf("failed to insert payment %s: %w", m.PaymentID, err)
	}
	return insertPaymentLinesInTx(ctx, tx, payment)
}

func insertPaymentLinesInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	lines := mapping.ToModelPaymentLines(payment)
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO payment_lines (` + paymentLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query,
			line.PaymentID, line.LineNo, line.SrNo,
			line.Amount, line.CDAmount, line.CDApplied,
			line.AdjustedOriginal, line.ExtraAmount,
		)
	}
	if err := flushBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("failed to insert payment lines for %s: %w", payment.PaymentID, err)
	}
	return nil
}

// updateEntryTotalsInTx persists the entry-state changes a payment
// mutation caused.
func updateEntryTotalsInTx(ctx context.Context, tx pgx.Tx, entries []domain.OutstandingEntry) error {
	query := `
		UPDATE entries
		SET original_net_amount = $2, net_amount = $3, total_paid = $4, total_cd = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE entry_id = $1;
	`
	for _, e := range entries {
		m := mapping.ToModelEntry(e)
		tag, err := tx.Exec(ctx, query,
			m.EntryID, m.OriginalNetAmount, m.NetAmount, m.TotalPaid, m.TotalCD,
			m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to update entry totals for %s: %w", m.EntryID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, m.EntryID)
		}
	}
	return nil
}
