package mapping

import (
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/models"
)

// ToModelEntry converts a domain Entry to a model Entry
func ToModelEntry(d domain.Entry) models.Entry {
	return models.Entry{
		EntryID:         d.EntryID,
		AccountID:       d.AccountID,
		CategoryID:      d.CategoryID,
		SignedAmount:    d.SignedAmount,
		OccurredOn:      d.OccurredOn,
		Sequence:        d.Sequence,
		CumulativeDelta: d.CumulativeDelta,
		Notes:           d.Notes,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a model Entry to a domain Entry
func ToDomainEntry(m models.Entry) domain.Entry {
	return domain.Entry{
		EntryID:         m.EntryID,
		AccountID:       m.AccountID,
		CategoryID:      m.CategoryID,
		SignedAmount:    m.SignedAmount,
		OccurredOn:      m.OccurredOn,
		Sequence:        m.Sequence,
		CumulativeDelta: m.CumulativeDelta,
		Notes:           m.Notes,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainEntrySlice converts a slice of model entries to domain entries
func ToDomainEntrySlice(ms []models.Entry) []domain.Entry {
	out := make([]domain.Entry, len(ms))
	for i, m := range ms {
		out[i] = ToDomainEntry(m)
	}
	return out
}
