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
	"github.com/shopspring/decimal"
)

// PgxSubscriptionRepository persists investor subscriptions.
type PgxSubscriptionRepository struct {
	BaseRepository
}

// NewSubscriptionRepository creates a new repository for subscription data.
func NewSubscriptionRepository(pool *pgxpool.Pool) portsrepo.SubscriptionRepositoryFacade {
	return &PgxSubscriptionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SubscriptionRepositoryFacade = (*PgxSubscriptionRepository)(nil)

// FindSubscriptionByID retrieves a subscription by its ID.
func (r *PgxSubscriptionRepository) FindSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	query := `
		SELECT subscription_id, commitment, funded_amount, status,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM subscriptions
		WHERE subscription_id = $1;
	`
	var m models.Subscription
	err := r.Pool.QueryRow(ctx, query, subscriptionID).Scan(
		&m.SubscriptionID,
		&m.Commitment,
		&m.FundedAmount,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to query subscription "+subscriptionID, err)
	}

	sub := mapping.ToDomainSubscription(m)
	return &sub, nil
}

// UpdateSubscriptionFunding persists a new funded amount and status.
func (r *PgxSubscriptionRepository) UpdateSubscriptionFunding(ctx context.Context, subscriptionID string, fundedAmount decimal.Decimal, status domain.SubscriptionStatus, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE subscriptions
		SET funded_amount = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE subscription_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, subscriptionID, fundedAmount, string(status), updatedAt, updatedByUserID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update funding for subscription "+subscriptionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
