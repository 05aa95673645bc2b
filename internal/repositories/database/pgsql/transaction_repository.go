package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/apperrors"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	portsrepo "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/repositories"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/models"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTransactionRepository persists bank transactions.
type PgxTransactionRepository struct {
	BaseRepository
}

// NewTransactionRepository creates a new repository for bank-transaction data.
func NewTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// FindTransactionByID retrieves a bank transaction by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error) {
	query := `
		SELECT transaction_id, amount, currency_code, status, matched_invoice_ids, counterparty, memo,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM bank_transactions
		WHERE transaction_id = $1;
	`
	var m models.BankTransaction
	err := r.Pool.QueryRow(ctx, query, transactionID).Scan(
		&m.TransactionID,
		&m.Amount,
		&m.CurrencyCode,
		&m.Status,
		&m.MatchedInvoiceIDs,
		&m.Counterparty,
		&m.Memo,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to query bank transaction "+transactionID, err)
	}

	txn := mapping.ToDomainBankTransaction(m)
	return &txn, nil
}

// UpdateTransactionMatchState persists a recomputed status and matched-invoice set.
func (r *PgxTransactionRepository) UpdateTransactionMatchState(ctx context.Context, transactionID string, status domain.TransactionStatus, matchedInvoiceIDs []string, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE bank_transactions
		SET status = $2, matched_invoice_ids = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, string(status), matchedInvoiceIDs, updatedAt, updatedByUserID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update match state for transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
