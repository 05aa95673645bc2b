package mapping

import (
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/models"
)

// ToDomainBankTransaction converts a model BankTransaction to a domain BankTransaction
func ToDomainBankTransaction(m models.BankTransaction) domain.BankTransaction {
	return domain.BankTransaction{
		TransactionID:     m.TransactionID,
		Amount:            m.Amount,
		CurrencyCode:      m.CurrencyCode,
		Status:            domain.TransactionStatus(m.Status),
		MatchedInvoiceIDs: m.MatchedInvoiceIDs,
		Counterparty:      m.Counterparty,
		Memo:              m.Memo,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:    m.InvoiceID,
		Total:        m.Total,
		PaidAmount:   m.PaidAmount,
		BalanceDue:   m.BalanceDue,
		CurrencyCode: m.CurrencyCode,
		Status:       domain.InvoiceStatus(m.Status),
		MatchStatus:  m.MatchStatus,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSuggestedMatch converts a model SuggestedMatch to a domain SuggestedMatch
func ToDomainSuggestedMatch(m models.SuggestedMatch) domain.SuggestedMatch {
	return domain.SuggestedMatch{
		SuggestedMatchID: m.SuggestedMatchID,
		TransactionID:    m.TransactionID,
		InvoiceID:        m.InvoiceID,
		Confidence:       m.Confidence,
		MatchReason:      m.MatchReason,
		AmountDifference: m.AmountDifference,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelReconciliationMatch converts a domain ReconciliationMatch to a model ReconciliationMatch
func ToModelReconciliationMatch(d domain.ReconciliationMatch) models.ReconciliationMatch {
	return models.ReconciliationMatch{
		MatchID:          d.MatchID,
		SuggestedMatchID: d.SuggestedMatchID,
		TransactionID:    d.TransactionID,
		InvoiceID:        d.InvoiceID,
		MatchedAmount:    d.MatchedAmount,
		MatchType:        models.MatchType(d.MatchType),
		MatchConfidence:  d.MatchConfidence,
		MatchReason:      d.MatchReason,
		Status:           models.MatchStatus(d.Status),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainReconciliationMatch converts a model ReconciliationMatch to a domain ReconciliationMatch
func ToDomainReconciliationMatch(m models.ReconciliationMatch) domain.ReconciliationMatch {
	return domain.ReconciliationMatch{
		MatchID:          m.MatchID,
		SuggestedMatchID: m.SuggestedMatchID,
		TransactionID:    m.TransactionID,
		InvoiceID:        m.InvoiceID,
		MatchedAmount:    m.MatchedAmount,
		MatchType:        domain.MatchType(m.MatchType),
		MatchConfidence:  m.MatchConfidence,
		MatchReason:      m.MatchReason,
		Status:           domain.MatchStatus(m.Status),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainReconciliationMatchSlice converts a slice of model matches to domain matches
func ToDomainReconciliationMatchSlice(ms []models.ReconciliationMatch) []domain.ReconciliationMatch {
	ds := make([]domain.ReconciliationMatch, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainReconciliationMatch(m)
	}
	return ds
}
