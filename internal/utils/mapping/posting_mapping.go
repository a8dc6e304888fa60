package mapping

import (
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	"github.com/firmbooks/trade_books_app/internal/models"
)

// ToModelPosting converts a domain Posting to a model Posting
func ToModelPosting(d domain.Posting) models.Posting {
	m := models.Posting{
		PostingID:      d.PostingID,
		PartyID:        d.PartyID,
		Date:           d.Date,
		Description:    d.Description,
		Debit:          d.Debit,
		Credit:         d.Credit,
		RunningBalance: d.RunningBalance,
		LinkGroupID:    d.LinkGroupID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	if d.LinkStrategy != nil {
		strategy := string(*d.LinkStrategy)
		m.LinkStrategy = &strategy
	}
	return m
}

// ToDomainPosting converts a model Posting to a domain Posting
func ToDomainPosting(m models.Posting) domain.Posting {
	d := domain.Posting{
		PostingID:      m.PostingID,
		PartyID:        m.PartyID,
		Date:           m.Date,
		Description:    m.Description,
		Debit:          m.Debit,
		Credit:         m.Credit,
		RunningBalance: m.RunningBalance,
		LinkGroupID:    m.LinkGroupID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.LinkStrategy != nil {
		strategy := domain.LinkStrategy(*m.LinkStrategy)
		d.LinkStrategy = &strategy
	}
	return d
}

// ToDomainPostingSlice converts a slice of model Postings to domain Postings
func ToDomainPostingSlice(ms []models.Posting) []domain.Posting {
	ds := make([]domain.Posting, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPosting(m)
	}
	return ds
}
