package pgsql

import (
	"context"
	"errors"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/apperrors"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	portsrepo "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/repositories"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/models"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxSuggestedMatchRepository persists suggested matches.
type PgxSuggestedMatchRepository struct {
	BaseRepository
}

// NewSuggestedMatchRepository creates a new repository for suggested-match data.
func NewSuggestedMatchRepository(pool *pgxpool.Pool) portsrepo.SuggestedMatchRepositoryFacade {
	return &PgxSuggestedMatchRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SuggestedMatchRepositoryFacade = (*PgxSuggestedMatchRepository)(nil)

// FindSuggestedMatchByID retrieves a suggested match by its ID.
func (r *PgxSuggestedMatchRepository) FindSuggestedMatchByID(ctx context.Context, suggestedMatchID string) (*domain.SuggestedMatch, error) {
	query := `
		SELECT suggested_match_id, transaction_id, invoice_id, confidence, match_reason, amount_difference,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM suggested_matches
		WHERE suggested_match_id = $1;
	`
	var m models.SuggestedMatch
	var confidence decimal.NullDecimal

	err := r.Pool.QueryRow(ctx, query, suggestedMatchID).Scan(
		&m.SuggestedMatchID,
		&m.TransactionID,
		&m.InvoiceID,
		&confidence,
		&m.MatchReason,
		&m.AmountDifference,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to query suggested match "+suggestedMatchID, err)
	}
	if confidence.Valid {
		m.Confidence = &confidence.Decimal
	}

	suggested := mapping.ToDomainSuggestedMatch(m)
	return &suggested, nil
}

// DeleteSuggestedMatch removes a consumed suggestion. Deleting an already
// deleted suggestion is not an error; cleanup must be idempotent.
func (r *PgxSuggestedMatchRepository) DeleteSuggestedMatch(ctx context.Context, suggestedMatchID string) error {
	query := `DELETE FROM suggested_matches WHERE suggested_match_id = $1;`
	_, err := r.Pool.Exec(ctx, query, suggestedMatchID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete suggested match "+suggestedMatchID, err)
	}
	return nil
}
