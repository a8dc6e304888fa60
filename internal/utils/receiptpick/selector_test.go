package receiptpick_test

import (
	"fmt"
	"testing"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/utils/receiptpick"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receipt(srNo string, outstanding int64) domain.OutstandingEntry {
	return domain.OutstandingEntry{
		SrNo:              srNo,
		OriginalNetAmount: decimal.NewFromInt(outstanding),
		NetAmount:         decimal.NewFromInt(outstanding),
	}
}

func srNos(c domain.Combination) []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.SrNo
	}
	return out
}

func TestSearch_MinimalExcessWins(t *testing.T) {
	// Receipts 1000, 1500, 2200 against target 3000 with no extra: every
	// single receipt falls short, {1000, 2200} at 200 over is the minimal
	// excess, then {1500, 2200} at 700, then the full pool at 1700.
	pool := []domain.OutstandingEntry{
		receipt("A", 1000),
		receipt("B", 1500),
		receipt("C", 2200),
	}

	combos := receiptpick.Search(pool, decimal.NewFromInt(3000), receiptpick.Config{}, receiptpick.Options{})
	require.Len(t, combos, 3)

	assert.ElementsMatch(t, []string{"A", "C"}, srNos(combos[0]))
	assert.True(t, decimal.NewFromInt(200).Equal(combos[0].Difference), "got %s", combos[0].Difference)
	assert.ElementsMatch(t, []string{"B", "C"}, srNos(combos[1]))
	assert.True(t, decimal.NewFromInt(700).Equal(combos[1].Difference))
	assert.ElementsMatch(t, []string{"A", "B", "C"}, srNos(combos[2]))
	assert.True(t, decimal.NewFromInt(1700).Equal(combos[2].Difference))

	// Every result meets the target and excess never decreases down the list.
	prev := decimal.Zero
	for _, c := range combos {
		assert.True(t, c.OfficialTotal.GreaterThanOrEqual(decimal.NewFromInt(3000)))
		assert.True(t, c.Difference.Abs().GreaterThanOrEqual(prev))
		prev = c.Difference.Abs()
	}
}

func TestSearch_TieBrokenByFewerReceipts(t *testing.T) {
	pool := []domain.OutstandingEntry{
		receipt("A", 3000),
		receipt("B", 1000),
		receipt("C", 2000),
	}
	combos := receiptpick.Search(pool, decimal.NewFromInt(3000), receiptpick.Config{}, receiptpick.Options{})
	require.NotEmpty(t, combos)

	// {A} and {B,C} both land exactly on target; the single receipt wins.
	assert.Equal(t, []string{"A"}, srNos(combos[0]))
	assert.True(t, combos[0].Difference.IsZero())
}

func TestSearch_BestEffortWhenPoolShort(t *testing.T) {
	pool := []domain.OutstandingEntry{
		receipt("A", 400),
		receipt("B", 300),
	}
	combos := receiptpick.Search(pool, decimal.NewFromInt(5000), receiptpick.Config{}, receiptpick.Options{})
	require.Len(t, combos, 1)
	assert.Len(t, combos[0].Entries, 2)
	assert.True(t, combos[0].Difference.IsNegative())
	assert.True(t, decimal.NewFromInt(700).Equal(combos[0].OfficialTotal))
}

func TestSearch_EmptyPool(t *testing.T) {
	assert.Nil(t, receiptpick.Search(nil, decimal.NewFromInt(100), receiptpick.Config{}, receiptpick.Options{}))
}

func TestSearch_HonorsCandidateCap(t *testing.T) {
	pool := make([]domain.OutstandingEntry, 12)
	for i := range pool {
		pool[i] = receipt(fmt.Sprintf("R%02d", i), 1000)
	}

	combos := receiptpick.Search(pool, decimal.NewFromInt(1000), receiptpick.Config{}, receiptpick.Options{
		CandidateCap: 5,
		ResultCap:    5,
	})
	assert.Len(t, combos, 5)
}

func TestSearch_ResultCapTrimsSorted(t *testing.T) {
	pool := make([]domain.OutstandingEntry, 10)
	for i := range pool {
		pool[i] = receipt(fmt.Sprintf("R%02d", i), int64(1000+i*10))
	}

	combos := receiptpick.Search(pool, decimal.NewFromInt(1000), receiptpick.Config{}, receiptpick.Options{
		ResultCap: 3,
	})
	require.Len(t, combos, 3)
	// The cheapest single receipts are exactly 1000, 1010, 1020 over zero excess.
	assert.True(t, combos[0].Difference.IsZero())
	assert.True(t, decimal.NewFromInt(10).Equal(combos[1].Difference))
	assert.True(t, decimal.NewFromInt(20).Equal(combos[2].Difference))
}

func TestExtraAmount(t *testing.T) {
	e := domain.OutstandingEntry{
		OriginalNetAmount: decimal.NewFromInt(2000),
		NetQuantity:       decimal.NewFromInt(10),
		FinalQuantity:     decimal.NewFromInt(8),
	}
	cfg := receiptpick.Config{
		OfficialRate:     decimal.NewFromInt(200),
		ExtraRatePerUnit: decimal.NewFromInt(5),
		Base:             receiptpick.BaseNetQuantity,
	}

	// net quantity 10 x rate 5
	assert.True(t, decimal.NewFromInt(50).Equal(receiptpick.ExtraAmount(e, cfg)))

	cfg.Base = receiptpick.BaseFinalQuantity
	assert.True(t, decimal.NewFromInt(40).Equal(receiptpick.ExtraAmount(e, cfg)))

	// outstanding 2000 / official rate 200 = 10 units x rate 5
	cfg.Base = receiptpick.BaseOutstandingByRate
	assert.True(t, decimal.NewFromInt(50).Equal(receiptpick.ExtraAmount(e, cfg)))

	// Compounded: (50 + 10) / 200 * 5 = 1.5
	cfg.Compounded = true
	assert.True(t, decimal.RequireFromString("1.5").Equal(receiptpick.ExtraAmount(e, cfg)),
		"got %s", receiptpick.ExtraAmount(e, cfg))
}

func TestOfficialAmount(t *testing.T) {
	e := domain.OutstandingEntry{
		OriginalNetAmount: decimal.NewFromInt(1000),
		NetQuantity:       decimal.NewFromInt(4),
	}
	cfg := receiptpick.Config{ExtraRatePerUnit: decimal.NewFromInt(25)}
	assert.True(t, decimal.NewFromInt(1100).Equal(receiptpick.OfficialAmount(e, cfg)))
}
