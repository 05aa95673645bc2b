package domain

import "github.com/shopspring/decimal"

// MatchType classifies how an allocation relates to the transaction and invoice remainders.
type MatchType string

const (
	// MatchExact settles the invoice and consumes the transaction in one allocation.
	MatchExact MatchType = "exact"
	// MatchPartial settles neither side fully.
	MatchPartial MatchType = "partial"
	// MatchSplit settles the invoice with a fraction of a larger transaction.
	MatchSplit MatchType = "split"
	// MatchCombined consumes the transaction while the invoice stays open,
	// multiple transactions contributing to one invoice.
	MatchCombined MatchType = "combined"
)

// MatchStatus is the lifecycle state of a reconciliation match.
type MatchStatus string

const (
	MatchSuggested MatchStatus = "suggested"
	MatchApproved  MatchStatus = "approved"
	MatchRejected  MatchStatus = "rejected"
)

// SuggestedMatch is a proposed transaction/invoice pairing produced by the upstream
// matching process. It is consumed exactly once: a successful accept deletes it,
// a permanent failure leaves it behind for operator retry.
type SuggestedMatch struct {
	SuggestedMatchID string           `json:"suggestedMatchID"`
	TransactionID    string           `json:"transactionID"`
	InvoiceID        string           `json:"invoiceID"`
	Confidence       *decimal.Decimal `json:"confidence,omitempty"`
	MatchReason      string           `json:"matchReason"`
	AmountDifference decimal.Decimal  `json:"amountDifference"`
	AuditFields
}

// ReconciliationMatch is a committed allocation of part of a bank transaction to an
// invoice. It is inserted in the suggested state and transitioned to approved only
// by the store's atomic apply operation; a failed apply deletes it again.
type ReconciliationMatch struct {
	MatchID          string           `json:"matchID"`
	SuggestedMatchID *string          `json:"suggestedMatchID,omitempty"` // Saga idempotency key
	TransactionID    string           `json:"transactionID"`
	InvoiceID        string           `json:"invoiceID"`
	MatchedAmount    decimal.Decimal  `json:"matchedAmount"` // Positive
	MatchType        MatchType        `json:"matchType"`
	MatchConfidence  *decimal.Decimal `json:"matchConfidence,omitempty"`
	MatchReason      string           `json:"matchReason"`
	Status           MatchStatus      `json:"status"`
	AuditFields
}
