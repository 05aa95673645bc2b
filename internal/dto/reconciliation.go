package dto

import (
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AcceptMatchRequest is the body of POST /reconciliation/matches/accept.
// MatchedAmount optionally caps the allocation below the computed candidate.
type AcceptMatchRequest struct {
	SuggestedMatchID string           `json:"suggested_match_id" binding:"required"`
	MatchedAmount    *decimal.Decimal `json:"matched_amount,omitempty"`
}

// BankTransactionResponse is the API representation of a bank transaction.
type BankTransactionResponse struct {
	TransactionID     string          `json:"transaction_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	MatchedInvoiceIDs []string        `json:"matched_invoice_ids"`
	Counterparty      string          `json:"counterparty,omitempty"`
	Memo              string          `json:"memo,omitempty"`
}

// InvoiceResponse is the API representation of an invoice.
type InvoiceResponse struct {
	InvoiceID   string          `json:"invoice_id"`
	Total       decimal.Decimal `json:"total"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	BalanceDue  decimal.Decimal `json:"balance_due"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	MatchStatus string          `json:"match_status,omitempty"`
}

// MatchResponse is the API representation of a reconciliation match.
type MatchResponse struct {
	MatchID         string           `json:"match_id"`
	TransactionID   string           `json:"transaction_id"`
	InvoiceID       string           `json:"invoice_id"`
	MatchedAmount   decimal.Decimal  `json:"matched_amount"`
	MatchType       string           `json:"match_type"`
	MatchConfidence *decimal.Decimal `json:"match_confidence,omitempty"`
	MatchReason     string           `json:"match_reason,omitempty"`
	Status          string           `json:"status"`
}

// AcceptMatchResponse is the success payload of an accepted match.
type AcceptMatchResponse struct {
	Success            bool                    `json:"success"`
	MatchID            string                  `json:"match_id"`
	AppliedAmount      decimal.Decimal         `json:"applied_amount"`
	BankTransaction    BankTransactionResponse `json:"bank_transaction"`
	Invoice            InvoiceResponse         `json:"invoice"`
	Matches            []MatchResponse         `json:"matches"`
	TotalMatchedAmount decimal.Decimal         `json:"total_matched_amount"`
	Warnings           []string                `json:"warnings,omitempty"`
}

// ToBankTransactionResponse converts a domain BankTransaction to its API representation.
func ToBankTransactionResponse(t *domain.BankTransaction) BankTransactionResponse {
	ids := t.MatchedInvoiceIDs
	if ids == nil {
		ids = []string{}
	}
	return BankTransactionResponse{
		TransactionID:     t.TransactionID,
		Amount:            t.Amount,
		Currency:          t.CurrencyCode,
		Status:            string(t.Status),
		MatchedInvoiceIDs: ids,
		Counterparty:      t.Counterparty,
		Memo:              t.Memo,
	}
}

// ToInvoiceResponse converts a domain Invoice to its API representation.
func ToInvoiceResponse(i *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:   i.InvoiceID,
		Total:       i.Total,
		PaidAmount:  i.PaidAmount,
		BalanceDue:  i.RemainingBalance(),
		Currency:    i.CurrencyCode,
		Status:      string(i.Status),
		MatchStatus: i.MatchStatus,
	}
}

// ToMatchResponse converts a domain ReconciliationMatch to its API representation.
func ToMatchResponse(m domain.ReconciliationMatch) MatchResponse {
	return MatchResponse{
		MatchID:         m.MatchID,
		TransactionID:   m.TransactionID,
		InvoiceID:       m.InvoiceID,
		MatchedAmount:   m.MatchedAmount,
		MatchType:       string(m.MatchType),
		MatchConfidence: m.MatchConfidence,
		MatchReason:     m.MatchReason,
		Status:          string(m.Status),
	}
}

// ToMatchResponses converts a slice of domain matches to API representations.
func ToMatchResponses(ms []domain.ReconciliationMatch) []MatchResponse {
	out := make([]MatchResponse, len(ms))
	for i, m := range ms {
		out[i] = ToMatchResponse(m)
	}
	return out
}
