package mapping

import (
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/models"
)

// ToModelEntry converts a domain OutstandingEntry to a model OutstandingEntry
func ToModelEntry(d domain.OutstandingEntry) models.OutstandingEntry {
	return models.OutstandingEntry{
		EntryID:           d.EntryID,
		PartyID:           d.PartyID,
		SrNo:              d.SrNo,
		OriginalNetAmount: d.OriginalNetAmount,
		NetAmount:         d.NetAmount,
		TotalPaid:         d.TotalPaid,
		TotalCD:           d.TotalCD,
		DueDate:           d.DueDate,
		Rate:              d.Rate,
		NetQuantity:       d.NetQuantity,
		FinalQuantity:     d.FinalQuantity,
		DeletedAt:         d.DeletedAt,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a model OutstandingEntry to a domain OutstandingEntry
func ToDomainEntry(m models.OutstandingEntry) domain.OutstandingEntry {
	return domain.OutstandingEntry{
		EntryID:           m.EntryID,
		PartyID:           m.PartyID,
		SrNo:              m.SrNo,
		OriginalNetAmount: m.OriginalNetAmount,
		NetAmount:         m.NetAmount,
		TotalPaid:         m.TotalPaid,
		TotalCD:           m.TotalCD,
		DueDate:           m.DueDate,
		Rate:              m.Rate,
		NetQuantity:       m.NetQuantity,
		FinalQuantity:     m.FinalQuantity,
		DeletedAt:         m.DeletedAt,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainEntrySlice converts a slice of model entries to domain entries
func ToDomainEntrySlice(ms []models.OutstandingEntry) []domain.OutstandingEntry {
	ds := make([]domain.OutstandingEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntry(m)
	}
	return ds
}
