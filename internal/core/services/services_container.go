package services

import (
	"github.com/firmbooks/trade_books_app/internal/core/ports"
	portsrepo "github.com/firmbooks/trade_books_app/internal/core/ports/repositories"
	portssvc "github.com/firmbooks/trade_books_app/internal/core/ports/services"
	"github.com/firmbooks/trade_books_app/internal/platform/config"
	"github.com/firmbooks/trade_books_app/internal/utils/receiptpick"
	"github.com/google/uuid"
)

// uuidGenerator is the production id source.
type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// NewIDGenerator returns the default UUID-backed id generator.
func NewIDGenerator() ports.IDGenerator { return uuidGenerator{} }

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	ids := NewIDGenerator()

	searchOpts := receiptpick.Options{
		MaxSize:      cfg.CombinationMaxSize,
		CandidateCap: cfg.CombinationCandidateCap,
		ResultCap:    cfg.CombinationResultCap,
		NodeBudget:   cfg.CombinationNodeBudget,
	}

	return &portssvc.ServiceContainer{
		Party:      NewPartyService(repos.PartyRepo, ids),
		Ledger:     NewLedgerService(repos.PostingRepo, repos.PartyRepo, ids),
		Entry:      NewEntryService(repos.EntryRepo, repos.PaymentRepo, repos.PartyRepo, ids),
		Payment:    NewPaymentService(repos.PaymentRepo, repos.EntryRepo, repos.PartyRepo, ids),
		Settlement: NewSettlementService(repos.EntryRepo, repos.PaymentRepo, repos.PartyRepo, searchOpts),
	}
}
