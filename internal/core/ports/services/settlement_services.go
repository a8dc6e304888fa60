package services

import (
	"context"

	"github.com/firmbooks/trade_books_app/internal/dto"
)

// SettlementSvcFacade defines the read-only settlement helpers: discount
// previews and official-channel receipt combination search. Neither
// operation writes anything.
type SettlementSvcFacade interface {
	// PreviewDiscount computes the cash discount a hypothetical payment
	// would earn against the party's current outstanding entries.
	PreviewDiscount(ctx context.Context, req dto.DiscountPreviewRequest) (*dto.DiscountPreviewResponse, error)

	// SearchCombinations proposes receipt subsets whose surcharged totals
	// come closest to the target official amount.
	SearchCombinations(ctx context.Context, req dto.CombinationSearchRequest) (*dto.CombinationSearchResponse, error)
}
