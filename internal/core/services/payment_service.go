package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/firmbooks/trade_books_app/internal/apperrors"
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/core/ports"
	portsrepo "github.com/firmbooks/trade_books_app/internal/core/ports/repositories"
	portssvc "github.com/firmbooks/trade_books_app/internal/core/ports/services"
	"github.com/firmbooks/trade_books_app/internal/dto"
	"github.com/firmbooks/trade_books_app/internal/middleware"
	"github.com/firmbooks/trade_books_app/internal/utils/cashdiscount"
	"github.com/firmbooks/trade_books_app/internal/utils/moneymath"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentAmountNotPositive  = errors.New("payment amount must be positive")
	ErrNothingOutstanding        = errors.New("no outstanding entries to allocate against")
	ErrEntryNotSelectable        = errors.New("selected entry not found for party")
	ErrPartialExceedsOutstanding = errors.New("partial payment exceeds the outstanding amount")
)

// paymentService records settlements against outstanding entries. A payment
// is distributed oldest due date first; the payment header, its paidFor
// lines and the entry totals they change are persisted in one repository
// transaction.
type paymentService struct {
	paymentRepo portsrepo.PaymentRepositoryFacade
	entryRepo   portsrepo.EntryRepositoryFacade
	partyRepo   portsrepo.PartyRepositoryFacade
	ids         ports.IDGenerator
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryFacade, entryRepo portsrepo.EntryRepositoryFacade, partyRepo portsrepo.PartyRepositoryFacade, ids ports.IDGenerator) portssvc.PaymentSvcFacade {
	return &paymentService{
		paymentRepo: paymentRepo,
		entryRepo:   entryRepo,
		partyRepo:   partyRepo,
		ids:         ids,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// paymentInput is the channel-agnostic payload shared by create and update.
type paymentInput struct {
	partyID        string
	paymentType    domain.PaymentType
	channel        domain.PaymentChannel
	amount         decimal.Decimal
	date           time.Time
	description    string
	discountMode   cashdiscount.Mode
	discountPct    decimal.Decimal
	discountAmount *decimal.Decimal
	entrySrNos     []string
	extraAmounts   map[string]decimal.Decimal
}

func createInput(req dto.CreatePaymentRequest) paymentInput {
	return paymentInput{
		partyID:        req.PartyID,
		paymentType:    domain.PaymentType(req.PaymentType),
		channel:        domain.PaymentChannel(req.Channel),
		amount:         req.Amount,
		date:           req.Date,
		description:    req.Description,
		discountMode:   cashdiscount.Mode(req.DiscountMode),
		discountPct:    req.DiscountPct,
		discountAmount: req.DiscountAmount,
		entrySrNos:     req.EntrySrNos,
		extraAmounts:   req.ExtraAmounts,
	}
}

func updateInput(partyID string, req dto.UpdatePaymentRequest) paymentInput {
	return paymentInput{
		partyID:        partyID,
		paymentType:    domain.PaymentType(req.PaymentType),
		channel:        domain.PaymentChannel(req.Channel),
		amount:         req.Amount,
		date:           req.Date,
		description:    req.Description,
		discountMode:   cashdiscount.Mode(req.DiscountMode),
		discountPct:    req.DiscountPct,
		discountAmount: req.DiscountAmount,
		entrySrNos:     req.EntrySrNos,
		extraAmounts:   req.ExtraAmounts,
	}
}

// CreatePayment records a payment and allocates it oldest-due first across
// the selected outstanding entries.
func (s *paymentService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	in := createInput(req)
	if err := s.requireActivePaymentParty(ctx, in.partyID); err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListEntriesByParty(ctx, in.partyID)
	if err != nil {
		return nil, err
	}
	pool := indexBySrNo(entries)

	now := time.Now().UTC()
	payment, touched, err := s.buildPayment(ctx, in, pool, s.ids.NewID(), domain.AuditFields{
		CreatedAt:     now,
		LastUpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.SavePayment(ctx, *payment, touched); err != nil {
		logger.Error("Failed to save payment", slog.String("error", err.Error()), slog.String("party_id", in.partyID))
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	logger.Info("Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("party_id", payment.PartyID),
		slog.String("amount", payment.Amount.String()),
		slog.Bool("cd_applied", payment.CDApplied),
	)
	return payment, nil
}

// UpdatePayment reverses the payment's prior allocation and reapplies the
// new payload under the same payment identity. Runs as one logical write:
// an observer never sees the reversal alone.
func (s *paymentService) UpdatePayment(ctx context.Context, paymentID string, req dto.UpdatePaymentRequest) (*domain.Payment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListEntriesByParty(ctx, existing.PartyID)
	if err != nil {
		return nil, err
	}
	pool := indexBySrNo(entries)
	reversed := reverseInto(pool, existing)

	in := updateInput(existing.PartyID, req)
	audit := existing.AuditFields
	audit.LastUpdatedAt = time.Now().UTC()
	payment, touched, err := s.buildPayment(ctx, in, pool, existing.PaymentID, audit)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.UpdatePayment(ctx, *payment, mergeTouched(reversed, touched)); err != nil {
		logger.Error("Failed to update payment", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	logger.Info("Payment updated",
		slog.String("payment_id", payment.PaymentID),
		slog.String("party_id", payment.PartyID),
	)
	return payment, nil
}

// DeletePayment removes a payment and restores the entries it settled.
func (s *paymentService) DeletePayment(ctx context.Context, paymentID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return err
	}

	entries, err := s.entryRepo.ListEntriesByParty(ctx, payment.PartyID)
	if err != nil {
		return err
	}
	pool := indexBySrNo(entries)
	restored := reverseInto(pool, payment)

	now := time.Now().UTC()
	if err := s.paymentRepo.DeletePayment(ctx, paymentID, restored, "", now); err != nil {
		logger.Error("Failed to delete payment", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	logger.Info("Payment deleted",
		slog.String("payment_id", paymentID),
		slog.String("party_id", payment.PartyID),
		slog.Int("entries_restored", len(restored)),
	)
	return nil
}

// GetPaymentByID retrieves a payment with its allocation lines.
func (s *paymentService) GetPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.paymentRepo.FindPaymentByID(ctx, paymentID)
}

// ListPaymentsByParty retrieves a paginated list of a party's payments.
func (s *paymentService) ListPaymentsByParty(ctx context.Context, partyID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	if _, err := s.partyRepo.FindPartyByID(ctx, partyID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	payments, nextToken, err := s.paymentRepo.ListPaymentsByParty(ctx, partyID, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListPaymentsResponse{
		Payments:  dto.ToPaymentResponses(payments),
		NextToken: nextToken,
	}, nil
}

// buildPayment runs the full allocation pipeline against the in-memory
// entry pool: selection, discount, oldest-due-first distribution and the
// cash/discount split. It mutates the selected entries in the pool and
// returns them as the touched set.
func (s *paymentService) buildPayment(ctx context.Context, in paymentInput, pool map[string]*domain.OutstandingEntry, paymentID string, audit domain.AuditFields) (*domain.Payment, []domain.OutstandingEntry, error) {
	if in.amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("%w: got %s", ErrPaymentAmountNotPositive, in.amount)
	}

	selection, err := selectEntries(pool, in)
	if err != nil {
		return nil, nil, err
	}
	if len(selection) == 0 {
		return nil, nil, ErrNothingOutstanding
	}

	// Outstanding per selected entry; the official channel inflates each
	// entry's effective original by its extra amount.
	adjusted := make(map[string]decimal.Decimal)
	outstanding := make(map[string]decimal.Decimal, len(selection))
	totalOutstanding := decimal.Zero
	for _, e := range selection {
		out := e.Outstanding()
		if in.channel == domain.ChannelGov {
			if extra, ok := in.extraAmounts[e.SrNo]; ok {
				adj := moneymath.Round2(e.OriginalNetAmount.Add(extra))
				adjusted[e.SrNo] = adj
				out = e.OutstandingAgainst(adj)
			}
		}
		outstanding[e.SrNo] = out
		totalOutstanding = totalOutstanding.Add(out)
	}

	discount, cdApplied, err := s.computeDiscount(ctx, in, selection, totalOutstanding)
	if err != nil {
		return nil, nil, err
	}

	gross := moneymath.Round2(in.amount)
	toDistribute := gross
	if cdApplied {
		toDistribute = moneymath.Round2(gross.Add(discount))
	}

	// A partial payment may not overshoot the selection; only a full
	// settlement keeps its excess on the header.
	if in.paymentType == domain.PaymentPartial && toDistribute.GreaterThan(totalOutstanding) {
		return nil, nil, fmt.Errorf("%w: %s against %s", ErrPartialExceedsOutstanding, toDistribute, totalOutstanding)
	}

	// Oldest due first, creation order as tie-break.
	sort.SliceStable(selection, func(i, j int) bool {
		if !selection[i].DueDate.Equal(selection[j].DueDate) {
			return selection[i].DueDate.Before(selection[j].DueDate)
		}
		return selection[i].CreatedAt.Before(selection[j].CreatedAt)
	})

	type covered struct {
		entry   *domain.OutstandingEntry
		applied decimal.Decimal
	}
	var coveredLines []covered
	remaining := toDistribute
	totalApplied := decimal.Zero
	for _, e := range selection {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		out := outstanding[e.SrNo]
		if out.LessThanOrEqual(decimal.Zero) {
			continue
		}
		applied := decimal.Min(out, remaining)
		coveredLines = append(coveredLines, covered{entry: e, applied: applied})
		remaining = remaining.Sub(applied)
		totalApplied = totalApplied.Add(applied)
	}
	if len(coveredLines) == 0 {
		return nil, nil, ErrNothingOutstanding
	}

	// Split each line's applied value into cash and discount, keeping the
	// discount proportional to the line's share. The last line absorbs the
	// rounding residual so the line sums reconcile exactly. Within a line
	// the discount takes precedence over cash: a manual override as large
	// as the pool settles the lines by discount alone while the header
	// keeps the cash actually transferred.
	paidFor := make([]domain.Allocation, len(coveredLines))
	cdRemaining := discount
	if !cdApplied {
		cdRemaining = decimal.Zero
	}
	if cdRemaining.GreaterThan(totalApplied) {
		cdRemaining = totalApplied
	}
	cdAssigned := decimal.Zero
	for i, line := range coveredLines {
		var cd decimal.Decimal
		if i == len(coveredLines)-1 {
			cd = cdRemaining.Sub(cdAssigned)
		} else {
			cd = moneymath.RoundUnit(cdRemaining.Mul(line.applied).Div(totalApplied))
		}
		if cd.GreaterThan(line.applied) {
			cd = line.applied
		}
		cdAssigned = cdAssigned.Add(cd)

		alloc := domain.Allocation{
			SrNo:      line.entry.SrNo,
			Amount:    line.applied.Sub(cd),
			CDAmount:  cd,
			CDApplied: cdApplied && cd.IsPositive(),
		}
		if adj, ok := adjusted[line.entry.SrNo]; ok {
			adjCopy := adj
			extra := in.extraAmounts[line.entry.SrNo]
			alloc.AdjustedOriginal = &adjCopy
			alloc.ExtraAmount = &extra
			// The official channel raises the entry's effective original to
			// the adjusted value; the line keeps both so a reversal can
			// restore the recorded one.
			line.entry.OriginalNetAmount = adj
		}
		paidFor[i] = alloc

		line.entry.ApplyAllocation(alloc.Amount, alloc.CDAmount)
		line.entry.LastUpdatedAt = audit.LastUpdatedAt
	}

	payment := domain.Payment{
		PaymentID:   paymentID,
		PartyID:     in.partyID,
		Date:        in.date,
		Amount:      gross,
		CDAmount:    cdRemaining,
		CDApplied:   cdApplied,
		PaymentType: in.paymentType,
		Channel:     in.channel,
		Description: in.description,
		PaidFor:     paidFor,
		AuditFields: audit,
	}
	if err := payment.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	touched := make([]domain.OutstandingEntry, len(coveredLines))
	for i, line := range coveredLines {
		touched[i] = *line.entry
	}
	return &payment, touched, nil
}

// computeDiscount resolves the discount amount and whether a discount is in
// effect at all. A manual discount amount overrides the computed one but
// still respects eligibility and the outstanding clamp.
func (s *paymentService) computeDiscount(ctx context.Context, in paymentInput, selection []*domain.OutstandingEntry, totalOutstanding decimal.Decimal) (decimal.Decimal, bool, error) {
	wantsDiscount := in.discountMode != "" && (in.discountPct.IsPositive() || in.discountAmount != nil)
	if !wantsDiscount {
		return decimal.Zero, false, nil
	}

	entries := make([]domain.OutstandingEntry, len(selection))
	for i, e := range selection {
		entries[i] = *e
	}
	if !cashdiscount.Eligible(entries, in.date) {
		return decimal.Zero, false, nil
	}

	if in.discountAmount != nil {
		amount := moneymath.RoundUnit(*in.discountAmount)
		if amount.IsNegative() {
			return decimal.Zero, false, fmt.Errorf("%w: discount amount must not be negative", apperrors.ErrValidation)
		}
		if amount.GreaterThan(totalOutstanding) {
			amount = totalOutstanding
		}
		return amount, amount.IsPositive(), nil
	}

	var history []domain.Payment
	if in.discountMode == cashdiscount.ModeOnPreviouslyPaidNoCD {
		var err error
		history, err = s.paymentRepo.FindPaymentHistory(ctx, in.partyID)
		if err != nil {
			return decimal.Zero, false, err
		}
	}

	result := cashdiscount.Compute(cashdiscount.Input{
		Mode:             in.discountMode,
		Percent:          in.discountPct,
		Entries:          entries,
		PaymentType:      in.paymentType,
		SettleAmount:     in.amount,
		ToBePaid:         in.amount,
		TotalOutstanding: totalOutstanding,
		PaymentDate:      in.date,
		History:          history,
	})
	return result.Amount, result.Amount.IsPositive(), nil
}

func (s *paymentService) requireActivePaymentParty(ctx context.Context, partyID string) error {
	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		return err
	}
	if !party.IsActive {
		return fmt.Errorf("%w: %s", ErrPartyInactive, partyID)
	}
	return nil
}

// selectEntries picks the allocation targets from the pool: the requested
// serial numbers, or every entry still carrying an outstanding amount.
func selectEntries(pool map[string]*domain.OutstandingEntry, in paymentInput) ([]*domain.OutstandingEntry, error) {
	if len(in.entrySrNos) > 0 {
		selection := make([]*domain.OutstandingEntry, 0, len(in.entrySrNos))
		for _, srNo := range in.entrySrNos {
			e, ok := pool[srNo]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrEntryNotSelectable, srNo)
			}
			selection = append(selection, e)
		}
		return selection, nil
	}

	var selection []*domain.OutstandingEntry
	for _, e := range pool {
		if e.Outstanding().IsPositive() {
			selection = append(selection, e)
		}
	}
	return selection, nil
}

func indexBySrNo(entries []domain.OutstandingEntry) map[string]*domain.OutstandingEntry {
	pool := make(map[string]*domain.OutstandingEntry, len(entries))
	for i := range entries {
		pool[entries[i].SrNo] = &entries[i]
	}
	return pool
}

// reverseInto undoes a payment's allocations against the pooled entries and
// returns the entries it restored.
func reverseInto(pool map[string]*domain.OutstandingEntry, payment *domain.Payment) []domain.OutstandingEntry {
	restored := make([]domain.OutstandingEntry, 0, len(payment.PaidFor))
	for _, line := range payment.PaidFor {
		e, ok := pool[line.SrNo]
		if !ok {
			continue
		}
		if line.AdjustedOriginal != nil && line.ExtraAmount != nil {
			e.OriginalNetAmount = line.AdjustedOriginal.Sub(*line.ExtraAmount)
		}
		e.ReverseAllocation(line.Amount, line.CDAmount)
		restored = append(restored, *e)
	}
	return restored
}

// mergeTouched combines reversal and reapplication snapshots, keeping the
// latest state per entry.
func mergeTouched(reversed, reapplied []domain.OutstandingEntry) []domain.OutstandingEntry {
	latest := make(map[string]domain.OutstandingEntry, len(reversed)+len(reapplied))
	order := make([]string, 0, len(reversed)+len(reapplied))
	for _, e := range reversed {
		if _, ok := latest[e.EntryID]; !ok {
			order = append(order, e.EntryID)
		}
		latest[e.EntryID] = e
	}
	for _, e := range reapplied {
		if _, ok := latest[e.EntryID]; !ok {
			order = append(order, e.EntryID)
		}
		latest[e.EntryID] = e
	}
	out := make([]domain.OutstandingEntry, len(order))
	for i, id := range order {
		out[i] = latest[id]
	}
	return out
}
