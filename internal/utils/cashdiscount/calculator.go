// Package cashdiscount computes negotiated cash discounts for payment
// settlement under the policy modes the business supports. All functions
// are pure; callers supply the selection, payment context and history.
package cashdiscount

import (
	"time"

	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/utils/moneymath"
	"github.com/shopspring/decimal"
)

// Mode selects the discount policy. Modes are mutually exclusive.
type Mode string

const (
	// ModePartialOnPaid bases the discount on the outstanding amount when
	// the payment fully settles it, otherwise on the amount being paid now.
	ModePartialOnPaid Mode = "partial_on_paid"
	// ModeOnUnpaidAmount bases the discount on the total outstanding of the
	// selected entries.
	ModeOnUnpaidAmount Mode = "on_unpaid_amount"
	// ModeOnFullAmount bases the discount on the sum of original net
	// amounts, capping cumulative discount across partial payments.
	ModeOnFullAmount Mode = "on_full_amount"
	// ModeOnPreviouslyPaidNoCD bases the discount on amounts previously
	// paid on the selection in payments that carried no discount.
	ModeOnPreviouslyPaidNoCD Mode = "on_previously_paid_no_cd"
)

// fullSettleTolerance treats a settle amount within 0.01 of the outstanding
// as a full settlement for ModePartialOnPaid.
var fullSettleTolerance = decimal.NewFromFloat(0.01)

// Input carries everything the calculator needs for one computation.
type Input struct {
	Mode             Mode
	Percent          decimal.Decimal
	Entries          []domain.OutstandingEntry // Selected entries
	PaymentType      domain.PaymentType
	SettleAmount     decimal.Decimal // Outstanding amount the payment is settling
	ToBePaid         decimal.Decimal // Amount actually being paid now
	TotalOutstanding decimal.Decimal // Total outstanding of the selection
	PaymentDate      time.Time
	History          []domain.Payment // Prior payments of the party
}

// Result is the computed discount and its derivation.
type Result struct {
	Amount       decimal.Decimal // Whole currency units, clamped to [0, MaxAvailable]
	Base         decimal.Decimal // Amount the percentage was applied to
	Offset       decimal.Decimal // Discount already granted (ModeOnFullAmount)
	MaxAvailable decimal.Decimal // Upper clamp used
}

// Eligible reports whether a discount may be offered at all: at least one
// selected entry must fall due on or after the payment date. Callers
// re-evaluate this whenever the selection or payment date changes.
func Eligible(entries []domain.OutstandingEntry, paymentDate time.Time) bool {
	for _, e := range entries {
		if !e.DueDate.Before(paymentDate) {
			return true
		}
	}
	return false
}

// Compute derives the discount amount for the given input. The result is
// rounded to the nearest whole currency unit and clamped so it never exceeds
// the selection's total outstanding.
func Compute(in Input) Result {
	var base, offset decimal.Decimal

	switch in.Mode {
	case ModePartialOnPaid:
		if in.PaymentType == domain.PaymentFull || settlesInFull(in.SettleAmount, in.TotalOutstanding) {
			base = in.TotalOutstanding
		} else {
			base = in.ToBePaid
		}
	case ModeOnUnpaidAmount:
		base = in.TotalOutstanding
	case ModeOnFullAmount:
		for _, e := range in.Entries {
			base = base.Add(e.OriginalNetAmount)
			offset = offset.Add(e.TotalCD)
		}
	case ModeOnPreviouslyPaidNoCD:
		base = paidWithoutDiscount(in.Entries, in.History)
	default:
		return Result{MaxAvailable: in.TotalOutstanding}
	}

	amount := base.Mul(in.Percent).Div(decimal.NewFromInt(100))
	if in.Mode == ModeOnFullAmount {
		// The percentage caps cumulative discount across multiple partial
		// payments on the same entries.
		amount = amount.Sub(offset)
	}

	maxAvailable := in.TotalOutstanding
	amount = clamp(moneymath.RoundUnit(amount), maxAvailable)

	return Result{
		Amount:       amount,
		Base:         base,
		Offset:       offset,
		MaxAvailable: maxAvailable,
	}
}

// PercentForAmount back-computes the percentage equivalent of a manually
// overridden discount amount, for display consistency. The active mode does
// not change on override.
func PercentForAmount(amount, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(decimal.NewFromInt(100)).Div(base).Round(2)
}

func settlesInFull(settleAmount, totalOutstanding decimal.Decimal) bool {
	return settleAmount.Sub(totalOutstanding).Abs().LessThanOrEqual(fullSettleTolerance)
}

// paidWithoutDiscount sums the amounts previously allocated to the selected
// entries by payments that did not have a discount applied.
func paidWithoutDiscount(entries []domain.OutstandingEntry, history []domain.Payment) decimal.Decimal {
	selected := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		selected[e.SrNo] = struct{}{}
	}

	total := decimal.Zero
	for _, payment := range history {
		if payment.CDApplied {
			continue
		}
		for _, line := range payment.PaidFor {
			if _, ok := selected[line.SrNo]; ok {
				total = total.Add(line.Amount)
			}
		}
	}
	return total
}

func clamp(amount, max decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(max) {
		return max
	}
	return amount
}
