package models

import "github.com/shopspring/decimal"

// TransactionStatus mirrors domain.TransactionStatus at the persistence layer.
type TransactionStatus string

// BankTransaction is the bank_transactions row.
type BankTransaction struct {
	TransactionID     string            `db:"transaction_id"`
	Amount            decimal.Decimal   `db:"amount"`
	CurrencyCode      string            `db:"currency_code"`
	Status            TransactionStatus `db:"status"`
	MatchedInvoiceIDs []string          `db:"matched_invoice_ids"`
	Counterparty      string            `db:"counterparty"`
	Memo              string            `db:"memo"`
	AuditFields
}

// InvoiceStatus mirrors domain.InvoiceStatus at the persistence layer.
type InvoiceStatus string

// Invoice is the invoices row.
type Invoice struct {
	InvoiceID    string           `db:"invoice_id"`
	Total        decimal.Decimal  `db:"total"`
	PaidAmount   decimal.Decimal  `db:"paid_amount"`
	BalanceDue   *decimal.Decimal `db:"balance_due"`
	CurrencyCode string           `db:"currency_code"`
	Status       InvoiceStatus    `db:"status"`
	MatchStatus  string           `db:"match_status"`
	AuditFields
}

// SuggestedMatch is the suggested_matches row.
type SuggestedMatch struct {
	SuggestedMatchID string           `db:"suggested_match_id"`
	TransactionID    string           `db:"transaction_id"`
	InvoiceID        string           `db:"invoice_id"`
	Confidence       *decimal.Decimal `db:"confidence"`
	MatchReason      string           `db:"match_reason"`
	AmountDifference decimal.Decimal  `db:"amount_difference"`
	AuditFields
}

// MatchType mirrors domain.MatchType at the persistence layer.
type MatchType string

// MatchStatus mirrors domain.MatchStatus at the persistence layer.
type MatchStatus string

// ReconciliationMatch is the reconciliation_matches row.
type ReconciliationMatch struct {
	MatchID          string           `db:"match_id"`
	SuggestedMatchID *string          `db:"suggested_match_id"`
	TransactionID    string           `db:"transaction_id"`
	InvoiceID        string           `db:"invoice_id"`
	MatchedAmount    decimal.Decimal  `db:"matched_amount"`
	MatchType        MatchType        `db:"match_type"`
	MatchConfidence  *decimal.Decimal `db:"match_confidence"`
	MatchReason      string           `db:"match_reason"`
	Status           MatchStatus      `db:"status"`
	AuditFields
}
