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

// PgxInvoiceRepository reads invoices. Payment state is written only by the
// store's apply function.
type PgxInvoiceRepository struct {
	BaseRepository
}

// NewInvoiceRepository creates a new repository for invoice data.
func NewInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

// FindInvoiceByID retrieves an invoice by its ID.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `
		SELECT invoice_id, total, paid_amount, balance_due, currency_code, status, match_status,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM invoices
		WHERE invoice_id = $1;
	`
	var m models.Invoice
	var balanceDue decimal.NullDecimal

	err := r.Pool.QueryRow(ctx, query, invoiceID).Scan(
		&m.InvoiceID,
		&m.Total,
		&m.PaidAmount,
		&balanceDue,
		&m.CurrencyCode,
		&m.Status,
		&m.MatchStatus,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to query invoice "+invoiceID, err)
	}
	if balanceDue.Valid {
		m.BalanceDue = &balanceDue.Decimal
	}

	invoice := mapping.ToDomainInvoice(m)
	return &invoice, nil
}
