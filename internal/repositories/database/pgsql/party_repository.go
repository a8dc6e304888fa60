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

type PgxPartyRepository struct {
	BaseRepository
}

// newPgxPartyRepository creates a new repository for party data.
func newPgxPartyRepository(pool *pgxpool.Pool) portsrepo.PartyRepositoryFacade {
	return &PgxPartyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PartyRepositoryFacade = (*PgxPartyRepository)(nil)

// SaveParty inserts a new party.
func (r *PgxPartyRepository) SaveParty(ctx context.Context, party domain.Party) error {
	modelParty := mapping.ToModelParty(party)

	query := `
		INSERT INTO parties (party_id, name, address, contact, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelParty.PartyID,
		modelParty.Name,
		modelParty.Address,
		modelParty.Contact,
		modelParty.IsActive,
		modelParty.CreatedAt,
		modelParty.CreatedBy,
		modelParty.LastUpdatedAt,
		modelParty.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: party with ID %s already exists", apperrors.ErrDuplicate, modelParty.PartyID)
		}
		return fmt.Errorf("failed to save party %s: %w", modelParty.PartyID, err)
	}
	return nil
}

// FindPartyByID retrieves a party by its ID.
func (r *PgxPartyRepository) FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	query := `
		SELECT party_id, name, address, contact, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM parties
		WHERE party_id = $1;
	`
	var m models.Party
	err := r.Pool.QueryRow(ctx, query, partyID).Scan(
		&m.PartyID,
		&m.Name,
		&m.Address,
		&m.Contact,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: party %s", apperrors.ErrNotFound, partyID)
		}
		return nil, fmt.Errorf("failed to find party %s: %w", partyID, err)
	}

	party := mapping.ToDomainParty(m)
	return &party, nil
}

// ListParties retrieves a paginated list of parties ordered by name.
func (r *PgxPartyRepository) ListParties(ctx context.Context, limit int, offset int) ([]domain.Party, error) {
	query := `
		SELECT party_id, name, address, contact, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM parties
		ORDER BY name ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}
	defer rows.Close()

	var parties []domain.Party
	for rows.Next() {
		var m models.Party
		if err := rows.Scan(
			&m.PartyID,
			&m.Name,
			&m.Address,
			&m.Contact,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan party row: %w", err)
		}
		parties = append(parties, mapping.ToDomainParty(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating party rows: %w", err)
	}
	return parties, nil
}

// UpdateParty updates an existing party's details.
func (r *PgxPartyRepository) UpdateParty(ctx context.Context, party domain.Party) error {
	modelParty := mapping.ToModelParty(party)

	query := `
		UPDATE parties
		SET name = $2, address = $3, contact = $4, last_updated_at = $5, last_updated_by = $6
		WHERE party_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		modelParty.PartyID,
		modelParty.Name,
		modelParty.Address,
		modelParty.Contact,
		modelParty.LastUpdatedAt,
		modelParty.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update party %s: %w", modelParty.PartyID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: party %s", apperrors.ErrNotFound, modelParty.PartyID)
	}
	return nil
}

// DeactivateParty marks a party as inactive. Parties are never removed.
func (r *PgxPartyRepository) DeactivateParty(ctx context.Context, partyID string, userID string, now time.Time) error {
	query := `
		UPDATE parties
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE party_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, partyID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate party %s: %w", partyID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: party %s", apperrors.ErrNotFound, partyID)
	}
	return nil
}
