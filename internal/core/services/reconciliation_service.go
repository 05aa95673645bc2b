package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/apperrors"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	portsrepo "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/repositories"
	portssvc "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/services"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/dto"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/middleware"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/utils/money"
)

var (
	ErrCurrencyMismatch        = errors.New("transaction and invoice currencies do not match")
	ErrPersistence             = errors.New("failed to persist reconciliation match")
	ErrApplyFailed             = errors.New("atomic apply operation failed")
	ErrPostApplyFetchFailed    = errors.New("match committed but refreshed state could not be read")
	ErrFinalizeFailed          = errors.New("transaction state reconciliation failed to persist")
	ErrSuggestionCleanupFailed = errors.New("consumed suggestion could not be deleted")
)

// defaultCurrency is assumed when a record carries no currency code.
const defaultCurrency = "USD"

// reconciliationService implements the matching engine: resolve a suggestion,
// allocate, commit through the store's atomic apply, reconcile transaction
// state and hand off to the funding cascade.
type reconciliationService struct {
	suggestedRepo   portsrepo.SuggestedMatchRepositoryFacade
	matchRepo       portsrepo.MatchRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	invoiceRepo     portsrepo.InvoiceRepositoryFacade
	fundingSvc      portssvc.FundingSvcFacade
	auditSvc        portssvc.AuditSvcFacade
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	suggestedRepo portsrepo.SuggestedMatchRepositoryFacade,
	matchRepo portsrepo.MatchRepositoryFacade,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	fundingSvc portssvc.FundingSvcFacade,
	auditSvc portssvc.AuditSvcFacade,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		suggestedRepo:   suggestedRepo,
		matchRepo:       matchRepo,
		transactionRepo: transactionRepo,
		invoiceRepo:     invoiceRepo,
		fundingSvc:      fundingSvc,
		auditSvc:        auditSvc,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// resolvedContext is the read-only context a suggestion resolves to.
type resolvedContext struct {
	suggested            *domain.SuggestedMatch
	transaction          *domain.BankTransaction
	invoice              *domain.Invoice
	priorAllocated       decimal.Decimal
	transactionRemainder decimal.Decimal
	invoiceRemainder     decimal.Decimal
}

// committedMatch is the state re-read from the store after a successful apply.
type committedMatch struct {
	match           domain.ReconciliationMatch
	transaction     *domain.BankTransaction
	invoice         *domain.Invoice
	approvedMatches []domain.ReconciliationMatch
}

// AcceptMatch implements portssvc.ReconciliationSvcFacade.
func (s *reconciliationService) AcceptMatch(ctx context.Context, req dto.AcceptMatchRequest, actingUserID string) (*dto.AcceptMatchResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rc, err := s.resolveSuggestedMatch(ctx, req.SuggestedMatchID)
	if err != nil {
		return nil, err
	}

	alloc, err := CalculateAllocation(AllocationInput{
		TransactionAmount:    rc.transaction.Amount,
		PriorAllocated:       rc.priorAllocated,
		TransactionRemainder: rc.transactionRemainder,
		InvoiceRemainder:     rc.invoiceRemainder,
		RequestedAmount:      req.MatchedAmount,
	})
	if err != nil {
		logger.Warn("Allocation rejected",
			slog.String("suggested_match_id", req.SuggestedMatchID),
			slog.String("error", err.Error()))
		return nil, err
	}

	committed, err := s.commitMatch(ctx, rc, alloc, actingUserID)
	if err != nil {
		return nil, err
	}

	var warnings []string

	// Preconditions fail closed above; from here on failures are reported,
	// not rolled back. The financial effect of the apply step is real.
	refreshedTxn, err := s.reconcileTransactionState(ctx, committed.transaction, committed.approvedMatches, rc.invoice.InvoiceID, actingUserID)
	if err != nil {
		logger.Warn("Transaction state reconciliation failed, match remains approved",
			slog.String("transaction_id", committed.transaction.TransactionID),
			slog.String("error", err.Error()))
		warnings = append(warnings, "transaction state could not be refreshed and may be stale")
	}

	if err := s.suggestedRepo.DeleteSuggestedMatch(ctx, rc.suggested.SuggestedMatchID); err != nil {
		cleanupErr := fmt.Errorf("%w: %v", ErrSuggestionCleanupFailed, err)
		logger.Warn("Failed to delete consumed suggestion",
			slog.String("suggested_match_id", rc.suggested.SuggestedMatchID),
			slog.String("error", cleanupErr.Error()))
		warnings = append(warnings, "match succeeded but the suggestion must be cleared manually")
	}

	if err := s.fundingSvc.ProcessInvoicePayment(ctx, *committed.invoice, actingUserID); err != nil {
		// Surfaced loudly by design: an under-funded subscription is a
		// downstream accounting inconsistency that must not be auto-resolved.
		logger.Error("Funding cascade failed after committed match",
			slog.String("match_id", committed.match.MatchID),
			slog.String("invoice_id", rc.invoice.InvoiceID),
			slog.String("error", err.Error()))
		return nil, err
	}

	totalMatched := money.Round(sumMatchedAmounts(committed.approvedMatches))

	s.auditSvc.Emit(ctx, "invoice_match_applied", "invoice", rc.invoice.InvoiceID, map[string]any{
		"match_id":             committed.match.MatchID,
		"bank_transaction_id":  committed.transaction.TransactionID,
		"applied_amount":       alloc.Amount.String(),
		"previous_paid_amount": rc.invoice.PaidAmount.String(),
		"new_paid_amount":      committed.invoice.PaidAmount.String(),
	}, actingUserID)
	s.auditSvc.Emit(ctx, "transaction_match_applied", "bank_transaction", committed.transaction.TransactionID, map[string]any{
		"match_id":            committed.match.MatchID,
		"applied_amount":      alloc.Amount.String(),
		"new_status":          string(refreshedTxn.Status),
		"matched_invoice_ids": refreshedTxn.MatchedInvoiceIDs,
	}, actingUserID)

	logger.Info("Match accepted",
		slog.String("match_id", committed.match.MatchID),
		slog.String("match_type", string(alloc.MatchType)),
		slog.String("applied_amount", alloc.Amount.String()),
		slog.String("transaction_status", string(refreshedTxn.Status)))

	return &dto.AcceptMatchResponse{
		Success:            true,
		MatchID:            committed.match.MatchID,
		AppliedAmount:      alloc.Amount,
		BankTransaction:    dto.ToBankTransactionResponse(refreshedTxn),
		Invoice:            dto.ToInvoiceResponse(committed.invoice),
		Matches:            dto.ToMatchResponses(committed.approvedMatches),
		TotalMatchedAmount: totalMatched,
		Warnings:           warnings,
	}, nil
}

// GetTransactionWithMatches implements portssvc.ReconciliationSvcFacade.
func (s *reconciliationService) GetTransactionWithMatches(ctx context.Context, transactionID string) (*domain.BankTransaction, []domain.ReconciliationMatch, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	matches, err := s.matchRepo.FindApprovedMatchesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load matches for transaction %s: %w", transactionID, err)
	}
	return txn, matches, nil
}

// GetInvoice implements portssvc.ReconciliationSvcFacade.
func (s *reconciliationService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

// resolveSuggestedMatch loads the suggestion and its joined context, validates
// preconditions and computes both remainders. Read-only; allocation totals come
// from a live query so concurrent approvals shrink the window for stale reads.
func (s *reconciliationService) resolveSuggestedMatch(ctx context.Context, suggestedMatchID string) (*resolvedContext, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	suggested, err := s.suggestedRepo.FindSuggestedMatchByID(ctx, suggestedMatchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Suggested match not found", slog.String("suggested_match_id", suggestedMatchID))
			return nil, fmt.Errorf("suggested match %s: %w", suggestedMatchID, apperrors.ErrNotFound)
		}
		logger.Error("Failed to load suggested match", slog.String("suggested_match_id", suggestedMatchID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load suggested match %s: %w", suggestedMatchID, err)
	}

	txn, err := s.transactionRepo.FindTransactionByID(ctx, suggested.TransactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Bank transaction missing for suggestion", slog.String("transaction_id", suggested.TransactionID))
			return nil, fmt.Errorf("bank transaction %s: %w", suggested.TransactionID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load transaction %s: %w", suggested.TransactionID, err)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, suggested.InvoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Invoice missing for suggestion", slog.String("invoice_id", suggested.InvoiceID))
			return nil, fmt.Errorf("invoice %s: %w", suggested.InvoiceID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load invoice %s: %w", suggested.InvoiceID, err)
	}

	txnCurrency := currencyOrDefault(txn.CurrencyCode)
	invCurrency := currencyOrDefault(invoice.CurrencyCode)
	if !strings.EqualFold(txnCurrency, invCurrency) {
		logger.Warn("Currency mismatch",
			slog.String("transaction_currency", txnCurrency),
			slog.String("invoice_currency", invCurrency))
		return nil, fmt.Errorf("%w: transaction is %s, invoice is %s", ErrCurrencyMismatch, txnCurrency, invCurrency)
	}

	priorAllocated, err := s.matchRepo.SumApprovedMatches(ctx, txn.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum approved matches for transaction %s: %w", txn.TransactionID, err)
	}

	return &resolvedContext{
		suggested:            suggested,
		transaction:          txn,
		invoice:              invoice,
		priorAllocated:       priorAllocated,
		transactionRemainder: money.Round(txn.Amount.Sub(priorAllocated)),
		invoiceRemainder:     money.Round(invoice.RemainingBalance()),
	}, nil
}

// commitMatch runs the saga: provisional insert, atomic apply, compensating
// delete on apply failure, then post-apply refetch. The suggested-match id is
// the idempotency key, so a retried request after a crash cannot double-insert.
func (s *reconciliationService) commitMatch(ctx context.Context, rc *resolvedContext, alloc AllocationResult, actingUserID string) (*committedMatch, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	match := domain.ReconciliationMatch{
		MatchID:          uuid.NewString(),
		SuggestedMatchID: &rc.suggested.SuggestedMatchID,
		TransactionID:    rc.transaction.TransactionID,
		InvoiceID:        rc.invoice.InvoiceID,
		MatchedAmount:    alloc.Amount,
		MatchType:        alloc.MatchType,
		MatchConfidence:  rc.suggested.Confidence,
		MatchReason:      rc.suggested.MatchReason,
		Status:           domain.MatchSuggested,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actingUserID,
		},
	}

	if err := s.matchRepo.SaveMatch(ctx, match); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Match already exists for suggestion",
				slog.String("suggested_match_id", rc.suggested.SuggestedMatchID))
			return nil, fmt.Errorf("%w: a match for suggestion %s already exists", apperrors.ErrDuplicate, rc.suggested.SuggestedMatchID)
		}
		logger.Error("Failed to insert provisional match", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := s.matchRepo.ApplyMatch(ctx, match.MatchID, actingUserID); err != nil {
		logger.Error("Apply operation failed, rolling back provisional match",
			slog.String("match_id", match.MatchID),
			slog.String("error", err.Error()))
		if delErr := s.matchRepo.DeleteMatch(ctx, match.MatchID); delErr != nil {
			// Orphaned suggested-state match; the idempotency key lets a
			// retried accept supersede it rather than double-insert.
			logger.Error("Compensating delete failed, provisional match orphaned",
				slog.String("match_id", match.MatchID),
				slog.String("error", delErr.Error()))
		}
		return nil, fmt.Errorf("%w: %v", ErrApplyFailed, err)
	}
	match.Status = domain.MatchApproved
	match.LastUpdatedAt = now
	match.LastUpdatedBy = actingUserID

	// The match is committed past this point and is never rolled back: the
	// invoice's payment state has already moved.
	txn, err := s.transactionRepo.FindTransactionByID(ctx, rc.transaction.TransactionID)
	if err != nil {
		return nil, s.postApplyFetchFailure(logger, match.MatchID, err)
	}
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, rc.invoice.InvoiceID)
	if err != nil {
		return nil, s.postApplyFetchFailure(logger, match.MatchID, err)
	}
	approved, err := s.matchRepo.FindApprovedMatchesByTransaction(ctx, rc.transaction.TransactionID)
	if err != nil {
		return nil, s.postApplyFetchFailure(logger, match.MatchID, err)
	}

	return &committedMatch{
		match:           match,
		transaction:     txn,
		invoice:         invoice,
		approvedMatches: approved,
	}, nil
}

func (s *reconciliationService) postApplyFetchFailure(logger *slog.Logger, matchID string, err error) error {
	logger.Error("Post-apply refetch failed, match is committed",
		slog.String("match_id", matchID),
		slog.String("error", err.Error()))
	return fmt.Errorf("%w: %v", ErrPostApplyFetchFailed, err)
}

// reconcileTransactionState recomputes the transaction's aggregate status and
// matched-invoice set from the full list of approved matches and persists the
// update only when something actually changed.
func (s *reconciliationService) reconcileTransactionState(ctx context.Context, txn *domain.BankTransaction, approved []domain.ReconciliationMatch, processedInvoiceID string, actingUserID string) (*domain.BankTransaction, error) {
	totalMatched := money.Round(sumMatchedAmounts(approved))

	var status domain.TransactionStatus
	switch {
	case money.IsNegligible(totalMatched):
		status = domain.TransactionUnmatched
	case money.WithinEpsilon(totalMatched, txn.Amount):
		status = domain.TransactionMatched
	default:
		status = domain.TransactionPartiallyMatched
	}

	idSet := make(map[string]struct{}, len(approved)+1)
	for _, m := range approved {
		idSet[m.InvoiceID] = struct{}{}
	}
	idSet[processedInvoiceID] = struct{}{}
	invoiceIDs := make([]string, 0, len(idSet))
	for id := range idSet {
		invoiceIDs = append(invoiceIDs, id)
	}
	sort.Strings(invoiceIDs)

	if txn.Status == status && sameIDSet(txn.MatchedInvoiceIDs, invoiceIDs) {
		// Nothing changed, skip the write.
		return txn, nil
	}

	if err := s.transactionRepo.UpdateTransactionMatchState(ctx, txn.TransactionID, status, invoiceIDs, actingUserID, time.Now().UTC()); err != nil {
		return txn, fmt.Errorf("%w: %v", ErrFinalizeFailed, err)
	}

	updated := *txn
	updated.Status = status
	updated.MatchedInvoiceIDs = invoiceIDs
	return &updated, nil
}

func sumMatchedAmounts(matches []domain.ReconciliationMatch) decimal.Decimal {
	total := decimal.Zero
	for _, m := range matches {
		total = total.Add(m.MatchedAmount)
	}
	return total
}

// sameIDSet compares two invoice id slices as sets, order-independent.
func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

func currencyOrDefault(code string) string {
	if code == "" {
		return defaultCurrency
	}
	return code
}
