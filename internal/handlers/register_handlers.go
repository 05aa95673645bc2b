package handlers

import (
	portssvc "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/services"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/services"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/repositories/database/pgsql"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterReconciliationRoutes wires the reconciliation engine under the given group.
func RegisterReconciliationRoutes(group *gin.RouterGroup, dbPool *pgxpool.Pool) {
	suggestedRepo := pgsql.NewSuggestedMatchRepository(dbPool)
	matchRepo := pgsql.NewMatchRepository(dbPool)
	transactionRepo := pgsql.NewTransactionRepository(dbPool)
	invoiceRepo := pgsql.NewInvoiceRepository(dbPool)
	feeEventRepo := pgsql.NewFeeEventRepository(dbPool)
	subscriptionRepo := pgsql.NewSubscriptionRepository(dbPool)
	auditRepo := pgsql.NewAuditRepository(dbPool)

	auditService := services.NewAuditService(auditRepo)
	fundingService := services.NewFundingService(feeEventRepo, subscriptionRepo, auditService)
	reconciliationService := services.NewReconciliationService(
		suggestedRepo, matchRepo, transactionRepo, invoiceRepo, fundingService, auditService)

	RegisterReconciliationRoutesWithService(group, reconciliationService)
}

// RegisterReconciliationRoutesWithService wires the routes against an already
// constructed service.
func RegisterReconciliationRoutesWithService(group *gin.RouterGroup, svc portssvc.ReconciliationSvcFacade) {
	reconciliationHandler := newReconciliationHandler(svc)

	reconciliation := group.Group("/reconciliation")
	{
		reconciliation.POST("/matches/accept", reconciliationHandler.acceptMatch)
		reconciliation.GET("/transactions/:transactionID", reconciliationHandler.getTransaction)
		reconciliation.GET("/invoices/:invoiceID", reconciliationHandler.getInvoice)
	}
}
