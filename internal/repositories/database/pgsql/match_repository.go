package pgsql

import (
	"context"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/apperrors"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	portsrepo "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/repositories"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/models"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxMatchRepository persists reconciliation matches and fronts the store's
// atomic apply operation.
type PgxMatchRepository struct {
	BaseRepository
}

// NewMatchRepository creates a new repository for reconciliation-match data.
func NewMatchRepository(pool *pgxpool.Pool) portsrepo.MatchRepositoryFacade {
	return &PgxMatchRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MatchRepositoryFacade = (*PgxMatchRepository)(nil)

// SumApprovedMatches returns the total approved matched amount for a transaction.
func (r *PgxMatchRepository) SumApprovedMatches(ctx context.Context, transactionID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(matched_amount), 0)
		FROM reconciliation_matches
		WHERE transaction_id = $1 AND status = 'approved';
	`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, transactionID).Scan(&total); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum approved matches for transaction "+transactionID, err)
	}
	return total, nil
}

// FindApprovedMatchesByTransaction retrieves all approved matches for a transaction.
func (r *PgxMatchRepository) FindApprovedMatchesByTransaction(ctx context.Context, transactionID string) ([]domain.ReconciliationMatch, error) {
	query := `
		SELECT match_id, suggested_match_id, transaction_id, invoice_id, matched_amount,
		       match_type, match_confidence, match_reason, status,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM reconciliation_matches
		WHERE transaction_id = $1 AND status = 'approved'
		ORDER BY created_at, match_id;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query approved matches for transaction "+transactionID, err)
	}
	defer rows.Close()

	var matches []models.ReconciliationMatch
	for rows.Next() {
		var m models.ReconciliationMatch
		var confidence decimal.NullDecimal
		err := rows.Scan(
			&m.MatchID,
			&m.SuggestedMatchID,
			&m.TransactionID,
			&m.InvoiceID,
			&m.MatchedAmount,
			&m.MatchType,
			&confidence,
			&m.MatchReason,
			&m.Status,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan reconciliation match row", err)
		}
		if confidence.Valid {
			m.MatchConfidence = &confidence.Decimal
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate reconciliation match rows", err)
	}

	return mapping.ToDomainReconciliationMatchSlice(matches), nil
}

// SaveMatch inserts a new match in the suggested state. The partial unique
// index on suggested_match_id makes the insert idempotent per suggestion:
// a conflicting insert affects zero rows and surfaces as ErrDuplicate.
func (r *PgxMatchRepository) SaveMatch(ctx context.Context, match domain.ReconciliationMatch) error {
	m := mapping.ToModelReconciliationMatch(match)
	query := `
		INSERT INTO reconciliation_matches (
			match_id, suggested_match_id, transaction_id, invoice_id, matched_amount,
			match_type, match_confidence, match_reason, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (suggested_match_id) WHERE suggested_match_id IS NOT NULL DO NOTHING;
	`
	var confidence decimal.NullDecimal
	if m.MatchConfidence != nil {
		confidence = decimal.NullDecimal{Decimal: *m.MatchConfidence, Valid: true}
	}

	tag, err := r.Pool.Exec(ctx, query,
		m.MatchID,
		m.SuggestedMatchID,
		m.TransactionID,
		m.InvoiceID,
		m.MatchedAmount,
		m.MatchType,
		confidence,
		m.MatchReason,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert reconciliation match "+m.MatchID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDuplicate
	}
	return nil
}

// ApplyMatch invokes the store-side apply function: as a single transaction it
// re-checks the transaction remainder under a row lock, marks the match
// approved and updates the invoice's payment state. The only place true
// multi-table atomicity is required.
func (r *PgxMatchRepository) ApplyMatch(ctx context.Context, matchID string, actingUserID string) error {
	query := `SELECT apply_reconciliation_match($1, $2);`
	if _, err := r.Pool.Exec(ctx, query, matchID, actingUserID); err != nil {
		return apperrors.NewAppError(500, "apply operation failed for match "+matchID, err)
	}
	return nil
}

// DeleteMatch removes a match. Compensating action for a failed apply.
func (r *PgxMatchRepository) DeleteMatch(ctx context.Context, matchID string) error {
	query := `DELETE FROM reconciliation_matches WHERE match_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, matchID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete reconciliation match "+matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
