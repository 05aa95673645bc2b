package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	portsrepo "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/repositories"
	portssvc "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/services"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/middleware"
)

// auditService appends audit records for state-changing actions.
type auditService struct {
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditRepositoryFacade) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// Emit implements portssvc.AuditSvcFacade. Failures are logged and swallowed;
// an audit sink outage must never fail the audited operation.
func (s *auditService) Emit(ctx context.Context, action string, entityType string, entityID string, metadata map[string]any, actingUserID string) {
	entry := domain.AuditEntry{
		AuditID:    uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
		CreatedBy:  actingUserID,
	}

	if err := s.auditRepo.AppendAuditLog(ctx, entry); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to append audit log",
			slog.String("action", action),
			slog.String("entity_type", entityType),
			slog.String("entity_id", entityID),
			slog.String("error", err.Error()))
	}
}
