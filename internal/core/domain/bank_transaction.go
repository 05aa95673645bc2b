package domain

import "github.com/shopspring/decimal"

// TransactionStatus indicates how much of a bank transaction has been allocated to invoices.
type TransactionStatus string

const (
	TransactionUnmatched        TransactionStatus = "unmatched"
	TransactionPartiallyMatched TransactionStatus = "partially_matched"
	TransactionMatched          TransactionStatus = "matched"
)

// BankTransaction is an incoming bank payment awaiting reconciliation against invoices.
// It is created by an upstream ingestion process; this service only ever updates its
// match state, never its amount, and never deletes it.
type BankTransaction struct {
	TransactionID     string            `json:"transactionID"`
	Amount            decimal.Decimal   `json:"amount"` // Positive; precise decimal type
	CurrencyCode      string            `json:"currencyCode"`
	Status            TransactionStatus `json:"status"`
	MatchedInvoiceIDs []string          `json:"matchedInvoiceIDs"` // Set semantics, order irrelevant
	Counterparty      string            `json:"counterparty"`
	Memo              string            `json:"memo"`
	AuditFields
}
