package pgsql

import (
	"context"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/apperrors"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	portsrepo "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxAuditRepository appends audit records. Append-only; this service never
// reads the audit log back.
type PgxAuditRepository struct {
	BaseRepository
}

// NewAuditRepository creates a new repository for audit-log data.
func NewAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// AppendAuditLog inserts a structured audit record. Metadata is stored as JSONB.
func (r *PgxAuditRepository) AppendAuditLog(ctx context.Context, entry domain.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (audit_id, action, entity_type, entity_id, metadata, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.AuditID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Metadata,
		entry.CreatedAt,
		entry.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append audit log for "+entry.EntityType+" "+entry.EntityID, err)
	}
	return nil
}
