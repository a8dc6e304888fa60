package moneymath

import (
	"sort"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary amount to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundUnit rounds a monetary amount to the nearest whole currency unit.
func RoundUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// RecalculateRunningBalances recomputes the running balance of every posting
// from scratch. The input may arrive in display order; computation always
// re-sorts oldest first (date ascending, creation time as tie-break) and
// rounds at every step so drift cannot accumulate. Returns a new slice in
// computation order; the input is not modified.
func RecalculateRunningBalances(postings []domain.Posting) []domain.Posting {
	out := make([]domain.Posting, len(postings))
	copy(out, postings)
	SortOldestFirst(out)

	running := decimal.Zero
	for i := range out {
		running = Round2(running.Add(out[i].Debit).Sub(out[i].Credit))
		out[i].RunningBalance = running
	}
	return out
}

// PartyBalance returns the closing balance of a posting list, recomputed
// from scratch. An empty list has a zero balance.
func PartyBalance(postings []domain.Posting) decimal.Decimal {
	recalced := RecalculateRunningBalances(postings)
	if len(recalced) == 0 {
		return decimal.Zero
	}
	return recalced[len(recalced)-1].RunningBalance
}

// SortOldestFirst orders postings for balance computation: date ascending,
// two postings on the same date keep creation order as a stable secondary key.
func SortOldestFirst(postings []domain.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		if !postings[i].Date.Equal(postings[j].Date) {
			return postings[i].Date.Before(postings[j].Date)
		}
		return postings[i].CreatedAt.Before(postings[j].CreatedAt)
	})
}

// SortNewestFirst orders postings for display: most recent date first,
// same-date postings newest creation first.
func SortNewestFirst(postings []domain.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		if !postings[i].Date.Equal(postings[j].Date) {
			return postings[i].Date.After(postings[j].Date)
		}
		return postings[i].CreatedAt.After(postings[j].CreatedAt)
	})
}
