package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/apperrors"
	portssvc "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/services"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/services"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/dto"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reconciliationHandler handles HTTP requests for the matching engine.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// newReconciliationHandler creates a new reconciliationHandler.
func newReconciliationHandler(reconciliationService portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconciliationService: reconciliationService}
}

// acceptMatch godoc
// @Summary Accept a suggested match
// @Description Allocates a bank transaction amount to an invoice, commits the match and cascades the financial consequences
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   request body dto.AcceptMatchRequest true "Suggested match to accept with optional amount override"
// @Success 200 {object} dto.AcceptMatchResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 404 {object} map[string]string "Suggested match, transaction or invoice not found"
// @Failure 409 {object} map[string]string "Match already exists for this suggestion"
// @Failure 422 {object} map[string]string "Allocation precondition failed"
// @Failure 500 {object} map[string]string "Commit or cascade failure"
// @Router /reconciliation/matches/accept [post]
func (h *reconciliationHandler) acceptMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AcceptMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for acceptMatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("suggested_match_id", req.SuggestedMatchID), slog.String("acting_user_id", actingUserID))

	resp, err := h.reconciliationService.AcceptMatch(c.Request.Context(), req, actingUserID)
	if err != nil {
		h.respondAcceptError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondAcceptError maps the engine's error taxonomy to HTTP responses.
// Preconditions map to 4xx; anything past the committed apply step maps to
// 500 with a message that makes the committed state explicit.
func (h *reconciliationHandler) respondAcceptError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Accept failed, record missing", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrCurrencyMismatch),
		errors.Is(err, services.ErrTransactionFullyAllocated),
		errors.Is(err, services.ErrInvoiceFullyPaid),
		errors.Is(err, services.ErrMatchAmountTooSmall):
		logger.Warn("Accept rejected by precondition", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Accept replayed for an already consumed suggestion", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPersistence):
		logger.Error("Match insert failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record the match; no changes were made"})
	case errors.Is(err, services.ErrApplyFailed):
		logger.Error("Apply failed and was rolled back", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "The match could not be applied; no changes were made"})
	case errors.Is(err, services.ErrPostApplyFetchFailed):
		logger.Error("Match committed but state refresh failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "The match was committed but refreshed state could not be read; please refresh"})
	case errors.Is(err, services.ErrFundingCascadeFailed):
		logger.Error("Funding cascade failed after committed match", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "The match was committed but a subscription funding update failed; operator attention required"})
	default:
		logger.Error("Unexpected error accepting match", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept match"})
	}
}

// getTransaction godoc
// @Summary Get a bank transaction with its approved matches
// @Tags reconciliation
// @Produce  json
// @Param   transactionID path string true "Bank transaction ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /reconciliation/transactions/{transactionID} [get]
func (h *reconciliationHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	txn, matches, err := h.reconciliationService.GetTransactionWithMatches(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transaction not found", slog.String("transaction_id", transactionID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		logger.Error("Failed to get transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bank_transaction": dto.ToBankTransactionResponse(txn),
		"matches":          dto.ToMatchResponses(matches),
	})
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags reconciliation
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Router /reconciliation/invoices/{invoiceID} [get]
func (h *reconciliationHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("invoiceID")

	invoice, err := h.reconciliationService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Invoice not found", slog.String("invoice_id", invoiceID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
			return
		}
		logger.Error("Failed to get invoice", slog.String("error", err.Error()), slog.String("invoice_id", invoiceID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invoice"})
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}
