package pgsql

import (
	"context"
	"time"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/apperrors"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	portsrepo "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/repositories"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/models"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxFeeEventRepository persists fee events.
type PgxFeeEventRepository struct {
	BaseRepository
}

// NewFeeEventRepository creates a new repository for fee-event data.
func NewFeeEventRepository(pool *pgxpool.Pool) portsrepo.FeeEventRepositoryFacade {
	return &PgxFeeEventRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FeeEventRepositoryFacade = (*PgxFeeEventRepository)(nil)

// FindFlatFeeEventsByInvoice retrieves the flat-type fee events for an invoice.
func (r *PgxFeeEventRepository) FindFlatFeeEventsByInvoice(ctx context.Context, invoiceID string) ([]domain.FeeEvent, error) {
	query := `
		SELECT fee_event_id, invoice_id, allocation_id, fee_type, computed_amount, status,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM fee_events
		WHERE invoice_id = $1 AND fee_type = 'flat'
		ORDER BY fee_event_id;
	`
	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query flat fee events for invoice "+invoiceID, err)
	}
	defer rows.Close()

	var events []models.FeeEvent
	for rows.Next() {
		var m models.FeeEvent
		err := rows.Scan(
			&m.FeeEventID,
			&m.InvoiceID,
			&m.AllocationID,
			&m.FeeType,
			&m.ComputedAmount,
			&m.Status,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan fee event row", err)
		}
		events = append(events, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate fee event rows", err)
	}

	return mapping.ToDomainFeeEventSlice(events), nil
}

// MarkFeeEventsPaid bulk-transitions an invoice's fee events to paid.
func (r *PgxFeeEventRepository) MarkFeeEventsPaid(ctx context.Context, invoiceID string, fromStatuses []domain.FeeEventStatus, updatedByUserID string, updatedAt time.Time) error {
	statuses := make([]string, len(fromStatuses))
	for i, s := range fromStatuses {
		statuses[i] = string(s)
	}
	query := `
		UPDATE fee_events
		SET status = 'paid', last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = $1 AND status = ANY($2);
	`
	if _, err := r.Pool.Exec(ctx, query, invoiceID, statuses, updatedAt, updatedByUserID); err != nil {
		return apperrors.NewAppError(500, "failed to mark fee events paid for invoice "+invoiceID, err)
	}
	return nil
}
