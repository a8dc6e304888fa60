package mapping

import (
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment (header only;
// paidFor lines map separately via ToModelPaymentLines).
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:   d.PaymentID,
		PartyID:     d.PartyID,
		Date:        d.Date,
		Amount:      d.Amount,
		CDAmount:    d.CDAmount,
		CDApplied:   d.CDApplied,
		PaymentType: string(d.PaymentType),
		Channel:     string(d.Channel),
		Description: d.Description,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToModelPaymentLines converts a payment's paidFor allocations to line rows.
func ToModelPaymentLines(d domain.Payment) []models.PaymentLine {
	lines := make([]models.PaymentLine, len(d.PaidFor))
	for i, a := range d.PaidFor {
		lines[i] = models.PaymentLine{
			PaymentID:        d.PaymentID,
			LineNo:           i,
			SrNo:             a.SrNo,
			Amount:           a.Amount,
			CDAmount:         a.CDAmount,
			CDApplied:        a.CDApplied,
			AdjustedOriginal: a.AdjustedOriginal,
			ExtraAmount:      a.ExtraAmount,
		}
	}
	return lines
}

// ToDomainPayment converts a model Payment and its lines to a domain Payment.
func ToDomainPayment(m models.Payment, lines []models.PaymentLine) domain.Payment {
	d := domain.Payment{
		PaymentID:   m.PaymentID,
		PartyID:     m.PartyID,
		Date:        m.Date,
		Amount:      m.Amount,
		CDAmount:    m.CDAmount,
		CDApplied:   m.CDApplied,
		PaymentType: domain.PaymentType(m.PaymentType),
		Channel:     domain.PaymentChannel(m.Channel),
		Description: m.Description,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	d.PaidFor = make([]domain.Allocation, len(lines))
	for i, line := range lines {
		d.PaidFor[i] = domain.Allocation{
			SrNo:             line.SrNo,
			Amount:           line.Amount,
			CDAmount:         line.CDAmount,
			CDApplied:        line.CDApplied,
			AdjustedOriginal: line.AdjustedOriginal,
			ExtraAmount:      line.ExtraAmount,
		}
	}
	return d
}
