package repositories

import (
	"context"
	"time"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SuggestedMatchReader defines read operations for suggested matches.
type SuggestedMatchReader interface {
	// FindSuggestedMatchByID retrieves a suggested match by its unique identifier.
	FindSuggestedMatchByID(ctx context.Context, suggestedMatchID string) (*domain.SuggestedMatch, error)
}

// SuggestedMatchWriter defines write operations for suggested matches.
type SuggestedMatchWriter interface {
	// DeleteSuggestedMatch removes a consumed suggestion. Called once the
	// corresponding reconciliation match has been approved.
	DeleteSuggestedMatch(ctx context.Context, suggestedMatchID string) error
}

// SuggestedMatchRepositoryFacade combines suggested-match repository interfaces.
type SuggestedMatchRepositoryFacade interface {
	SuggestedMatchReader
	SuggestedMatchWriter
}

// MatchReader defines read operations for reconciliation matches.
type MatchReader interface {
	// SumApprovedMatches returns the total matched amount over all approved
	// matches for a transaction. Always a live query; allocation totals are
	// never cached across requests.
	SumApprovedMatches(ctx context.Context, transactionID string) (decimal.Decimal, error)

	// FindApprovedMatchesByTransaction retrieves all approved matches for a transaction.
	FindApprovedMatchesByTransaction(ctx context.Context, transactionID string) ([]domain.ReconciliationMatch, error)
}

// MatchWriter defines write operations for reconciliation matches.
type MatchWriter interface {
	// SaveMatch inserts a new match in the suggested state. The suggested-match
	// id acts as an idempotency key: a second insert for the same suggestion
	// returns apperrors.ErrDuplicate instead of creating another row.
	SaveMatch(ctx context.Context, match domain.ReconciliationMatch) error

	// ApplyMatch atomically approves the match and updates the invoice's
	// paid amount, status and match status. This is the only operation that
	// requires true multi-table atomicity and it is delegated entirely to
	// the store.
	ApplyMatch(ctx context.Context, matchID string, actingUserID string) error

	// DeleteMatch removes a match. Used as the compensating action when
	// ApplyMatch fails after a successful insert.
	DeleteMatch(ctx context.Context, matchID string) error
}

// MatchRepositoryFacade combines match repository interfaces.
type MatchRepositoryFacade interface {
	MatchReader
	MatchWriter
}

// TransactionReader defines read operations for bank transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a bank transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error)
}

// TransactionWriter defines write operations for bank transactions.
type TransactionWriter interface {
	// UpdateTransactionMatchState persists a recomputed status and matched
	// invoice id set for a transaction.
	UpdateTransactionMatchState(ctx context.Context, transactionID string, status domain.TransactionStatus, matchedInvoiceIDs []string, updatedByUserID string, updatedAt time.Time) error
}

// TransactionRepositoryFacade combines bank-transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

// InvoiceRepositoryFacade defines read operations for invoices. Invoice payment
// state is written only by the store's atomic apply operation, never directly.
type InvoiceRepositoryFacade interface {
	// FindInvoiceByID retrieves an invoice by its unique identifier.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)
}
