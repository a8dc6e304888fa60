// Package receiptpick searches a pool of outstanding receipts for subsets
// whose adjusted total meets a mandated target amount with minimal excess.
// It is a bounded heuristic, not an optimal subset-sum solver: it may miss
// the true minimum-excess combination once the candidate cap is reached.
package receiptpick

import (
	"sort"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/utils/moneymath"
	"github.com/shopspring/decimal"
)

// BaseMode selects which quantity the per-receipt extra amount derives from.
type BaseMode string

const (
	// BaseNetQuantity uses the receipt's net quantity.
	BaseNetQuantity BaseMode = "net_quantity"
	// BaseFinalQuantity uses the receipt's final quantity.
	BaseFinalQuantity BaseMode = "final_quantity"
	// BaseOutstandingByRate derives the base as outstanding / official rate.
	BaseOutstandingByRate BaseMode = "outstanding_by_rate"
)

// Config describes the official channel's rate structure.
type Config struct {
	OfficialRate     decimal.Decimal
	ExtraRatePerUnit decimal.Decimal
	Base             BaseMode
	// Compounded recomputes the extra a second time from the initial extra,
	// modelling a tax-on-tax style top-up.
	Compounded bool
}

// Options bounds the subset search. Zero values fall back to defaults so a
// partially filled struct stays safe.
type Options struct {
	MaxSize      int // Largest combination size considered
	CandidateCap int // Stop enumerating after this many valid combinations
	ResultCap    int // Number of best combinations returned
	NodeBudget   int // Hard cap on search nodes visited
}

// DefaultOptions returns the caps the reference behavior used, plus an
// explicit node budget to guarantee termination on large pools.
func DefaultOptions() Options {
	return Options{
		MaxSize:      8,
		CandidateCap: 200,
		ResultCap:    100,
		NodeBudget:   2_000_000,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxSize <= 0 {
		o.MaxSize = def.MaxSize
	}
	if o.CandidateCap <= 0 {
		o.CandidateCap = def.CandidateCap
	}
	if o.ResultCap <= 0 {
		o.ResultCap = def.ResultCap
	}
	if o.NodeBudget <= 0 {
		o.NodeBudget = def.NodeBudget
	}
	return o
}

// ExtraAmount computes the official-channel top-up for one receipt.
func ExtraAmount(e domain.OutstandingEntry, cfg Config) decimal.Decimal {
	base := extraBase(e, cfg)
	extra := base.Mul(cfg.ExtraRatePerUnit)
	if cfg.Compounded && !cfg.OfficialRate.IsZero() {
		extra = extra.Add(base).Div(cfg.OfficialRate).Mul(cfg.ExtraRatePerUnit)
	}
	return moneymath.Round2(extra)
}

// OfficialAmount is the receipt's outstanding inflated by its extra amount.
func OfficialAmount(e domain.OutstandingEntry, cfg Config) decimal.Decimal {
	return e.Outstanding().Add(ExtraAmount(e, cfg))
}

func extraBase(e domain.OutstandingEntry, cfg Config) decimal.Decimal {
	switch cfg.Base {
	case BaseFinalQuantity:
		return e.FinalQuantity
	case BaseOutstandingByRate:
		if cfg.OfficialRate.IsZero() {
			return decimal.Zero
		}
		return e.Outstanding().Div(cfg.OfficialRate)
	default:
		return e.NetQuantity
	}
}

type candidate struct {
	entry    domain.OutstandingEntry
	official decimal.Decimal
}

// Search enumerates receipt subsets of increasing size whose official total
// meets or exceeds the target, and returns the best ones ordered by
// ascending excess, ties broken by fewer receipts. If the whole pool cannot
// reach the target, the single best-effort combination using every receipt
// is returned.
func Search(pool []domain.OutstandingEntry, target decimal.Decimal, cfg Config, opts Options) []domain.Combination {
	opts = opts.withDefaults()
	if len(pool) == 0 {
		return nil
	}

	cands := make([]candidate, len(pool))
	poolTotal := decimal.Zero
	for i, e := range pool {
		cands[i] = candidate{entry: e, official: OfficialAmount(e, cfg)}
		poolTotal = poolTotal.Add(cands[i].official)
	}

	if poolTotal.LessThan(target) {
		// Best effort: everything we have still falls short.
		entries := make([]domain.OutstandingEntry, len(pool))
		copy(entries, pool)
		return []domain.Combination{buildCombination(entries, cfg, target)}
	}

	// Descending by official amount so the r largest remaining candidates
	// are always a contiguous prefix, which makes the reachability prune a
	// slice-sum lookup.
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].official.GreaterThan(cands[j].official)
	})
	prefix := make([]decimal.Decimal, len(cands)+1)
	for i, c := range cands {
		prefix[i+1] = prefix[i].Add(c.official)
	}

	s := &searcher{
		cands:  cands,
		prefix: prefix,
		target: target,
		cfg:    cfg,
		opts:   opts,
	}

	maxSize := opts.MaxSize
	if maxSize > len(cands) {
		maxSize = len(cands)
	}
	for size := 1; size <= maxSize && !s.done(); size++ {
		s.picked = s.picked[:0]
		s.walk(0, size, decimal.Zero)
	}

	sort.SliceStable(s.found, func(i, j int) bool {
		di := s.found[i].Difference.Abs()
		dj := s.found[j].Difference.Abs()
		if !di.Equal(dj) {
			return di.LessThan(dj)
		}
		return len(s.found[i].Entries) < len(s.found[j].Entries)
	})
	if len(s.found) > opts.ResultCap {
		s.found = s.found[:opts.ResultCap]
	}
	return s.found
}

type searcher struct {
	cands  []candidate
	prefix []decimal.Decimal
	target decimal.Decimal
	cfg    Config
	opts   Options
	picked []int
	found  []domain.Combination
	nodes  int
}

func (s *searcher) done() bool {
	return len(s.found) >= s.opts.CandidateCap || s.nodes >= s.opts.NodeBudget
}

// walk extends the current selection from index `from`, needing `need` more
// receipts. partial is the official total of the picked receipts so far.
func (s *searcher) walk(from, need int, partial decimal.Decimal) {
	if s.done() {
		return
	}
	if need == 0 {
		if partial.GreaterThanOrEqual(s.target) {
			s.record()
		}
		return
	}
	for i := from; i+need <= len(s.cands); i++ {
		s.nodes++
		if s.nodes >= s.opts.NodeBudget {
			return
		}
		// The best this branch can do is take the `need` largest remaining
		// candidates; abandon it once even that cannot reach the target.
		best := partial.Add(s.prefix[i+need].Sub(s.prefix[i]))
		if best.LessThan(s.target) {
			return
		}
		s.picked = append(s.picked, i)
		s.walk(i+1, need-1, partial.Add(s.cands[i].official))
		s.picked = s.picked[:len(s.picked)-1]
		if s.done() {
			return
		}
	}
}

func (s *searcher) record() {
	entries := make([]domain.OutstandingEntry, len(s.picked))
	for i, idx := range s.picked {
		entries[i] = s.cands[idx].entry
	}
	s.found = append(s.found, buildCombination(entries, s.cfg, s.target))
}

func buildCombination(entries []domain.OutstandingEntry, cfg Config, target decimal.Decimal) domain.Combination {
	baseTotal := decimal.Zero
	officialTotal := decimal.Zero
	for _, e := range entries {
		baseTotal = baseTotal.Add(e.Outstanding())
		officialTotal = officialTotal.Add(OfficialAmount(e, cfg))
	}
	return domain.Combination{
		Entries:       entries,
		BaseTotal:     baseTotal,
		OfficialTotal: officialTotal,
		Difference:    officialTotal.Sub(target),
	}
}
