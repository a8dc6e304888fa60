package pgsql

import (
	portsrepo "github.com/firmbooks/trade_books_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	partyRepo := newPgxPartyRepository(dbPool)
	postingRepo := newPgxPostingRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool)

	return portsrepo.RepositoryProvider{
		PartyRepo:   partyRepo,
		PostingRepo: postingRepo,
		EntryRepo:   entryRepo,
		PaymentRepo: paymentRepo,
	}
}
