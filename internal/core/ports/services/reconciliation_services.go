package services

import (
	"context"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/dto"
)

// ReconciliationSvcFacade is the public entry point of the matching engine.
type ReconciliationSvcFacade interface {
	// AcceptMatch consumes a suggested match: it allocates, commits the match
	// through the store's atomic apply step, reconciles the transaction's
	// aggregate state, runs the funding cascade and emits audit records.
	AcceptMatch(ctx context.Context, req dto.AcceptMatchRequest, actingUserID string) (*dto.AcceptMatchResponse, error)

	// GetTransactionWithMatches retrieves a bank transaction together with its
	// approved reconciliation matches.
	GetTransactionWithMatches(ctx context.Context, transactionID string) (*domain.BankTransaction, []domain.ReconciliationMatch, error)

	// GetInvoice retrieves an invoice.
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
}

// FundingSvcFacade propagates invoice payment events into subscription funding.
type FundingSvcFacade interface {
	// ProcessInvoicePayment runs the funding cascade for an invoice whose
	// refreshed payment status is known. Paid invoices settle fees in full,
	// partially paid invoices pro-rate them, anything else is a no-op.
	ProcessInvoicePayment(ctx context.Context, invoice domain.Invoice, actingUserID string) error
}

// AuditSvcFacade appends structured audit records for state-changing actions.
type AuditSvcFacade interface {
	// Emit appends an audit record. Fire-and-forget: failures are logged and
	// swallowed, never propagated to the caller.
	Emit(ctx context.Context, action string, entityType string, entityID string, metadata map[string]any, actingUserID string)
}
