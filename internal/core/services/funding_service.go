package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/apperrors"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	portsrepo "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/repositories"
	portssvc "github.com/Ghiles-CTO/Versotech-sub020/internal/core/ports/services"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/middleware"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/utils/money"
)

// ErrFundingCascadeFailed marks a full-payment cascade that could not persist a
// subscription update. It fails the whole request even though the match is
// already committed.
var ErrFundingCascadeFailed = errors.New("subscription funding update failed during full-payment cascade")

var (
	// fundedThreshold is the funding ratio (percent) at which a subscription
	// counts as fully funded. 99.99 rather than 100 to absorb rounding drift
	// on the last contribution.
	fundedThreshold = decimal.RequireFromString("99.99")
	hundred         = decimal.NewFromInt(100)
)

// fundingService propagates invoice payment events into fee settlement and
// subscription funded capital.
type fundingService struct {
	feeEventRepo     portsrepo.FeeEventRepositoryFacade
	subscriptionRepo portsrepo.SubscriptionRepositoryFacade
	auditSvc         portssvc.AuditSvcFacade
}

// NewFundingService creates a new FundingService.
func NewFundingService(feeEventRepo portsrepo.FeeEventRepositoryFacade, subscriptionRepo portsrepo.SubscriptionRepositoryFacade, auditSvc portssvc.AuditSvcFacade) portssvc.FundingSvcFacade {
	return &fundingService{
		feeEventRepo:     feeEventRepo,
		subscriptionRepo: subscriptionRepo,
		auditSvc:         auditSvc,
	}
}

var _ portssvc.FundingSvcFacade = (*fundingService)(nil)

// ProcessInvoicePayment implements portssvc.FundingSvcFacade.
func (s *fundingService) ProcessInvoicePayment(ctx context.Context, invoice domain.Invoice, actingUserID string) error {
	switch invoice.Status {
	case domain.InvoicePaid:
		return s.cascadeFullPayment(ctx, invoice, actingUserID)
	case domain.InvoicePartiallyPaid:
		return s.cascadePartialPayment(ctx, invoice, actingUserID)
	default:
		return nil
	}
}

// cascadeFullPayment settles the invoice's fee events and credits each
// generating subscription with its full flat-fee total. Persistence failures
// here are fatal: silently under-funding a subscription is a correctness
// violation worse than surfacing the failure to the operator.
func (s *fundingService) cascadeFullPayment(ctx context.Context, invoice domain.Invoice, actingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	if err := s.feeEventRepo.MarkFeeEventsPaid(ctx, invoice.InvoiceID, []domain.FeeEventStatus{domain.FeeAccrued, domain.FeeInvoiced}, actingUserID, now); err != nil {
		return fmt.Errorf("%w: failed to settle fee events for invoice %s: %v", ErrFundingCascadeFailed, invoice.InvoiceID, err)
	}

	totals, err := s.flatFeeTotalsByAllocation(ctx, invoice.InvoiceID, decimal.NewFromInt(1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFundingCascadeFailed, err)
	}

	for _, allocationID := range sortedAllocationIDs(totals) {
		feeTotal := totals[allocationID]

		sub, err := s.subscriptionRepo.FindSubscriptionByID(ctx, allocationID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Warn("Subscription missing for fee allocation, skipping",
					slog.String("allocation_id", allocationID),
					slog.String("invoice_id", invoice.InvoiceID))
				continue
			}
			return fmt.Errorf("%w: failed to load subscription %s: %v", ErrFundingCascadeFailed, allocationID, err)
		}
		if !sub.Status.FundingEligible() {
			logger.Warn("Subscription not funding-eligible, skipping",
				slog.String("subscription_id", sub.SubscriptionID),
				slog.String("status", string(sub.Status)))
			continue
		}

		newFunded := money.Round(sub.FundedAmount.Add(feeTotal))
		newStatus := fundingStatus(newFunded, sub.Commitment, sub.Status)

		if err := s.subscriptionRepo.UpdateSubscriptionFunding(ctx, sub.SubscriptionID, newFunded, newStatus, actingUserID, now); err != nil {
			logger.Error("Failed to persist subscription funding",
				slog.String("subscription_id", sub.SubscriptionID),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: subscription %s: %v", ErrFundingCascadeFailed, sub.SubscriptionID, err)
		}

		s.auditSvc.Emit(ctx, "subscription_funding_updated", "subscription", sub.SubscriptionID, map[string]any{
			"invoice_id":             invoice.InvoiceID,
			"previous_funded_amount": sub.FundedAmount.String(),
			"new_funded_amount":      newFunded.String(),
			"previous_status":        string(sub.Status),
			"new_status":             string(newStatus),
		}, actingUserID)
	}

	return nil
}

// cascadePartialPayment pro-rates flat fees by the invoice's payment ratio.
// Pro-ration is advisory, unlike full payment which is definitive, so
// persistence failures are logged and skipped rather than raised.
func (s *fundingService) cascadePartialPayment(ctx context.Context, invoice domain.Invoice, actingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !invoice.Total.IsPositive() {
		return nil
	}
	paymentRatio := invoice.PaidAmount.Div(invoice.Total)

	totals, err := s.flatFeeTotalsByAllocation(ctx, invoice.InvoiceID, paymentRatio)
	if err != nil {
		logger.Error("Failed to load flat fee events for pro-rated cascade",
			slog.String("invoice_id", invoice.InvoiceID),
			slog.String("error", err.Error()))
		return nil
	}

	now := time.Now().UTC()
	for _, allocationID := range sortedAllocationIDs(totals) {
		contribution := totals[allocationID]

		sub, err := s.subscriptionRepo.FindSubscriptionByID(ctx, allocationID)
		if err != nil {
			logger.Warn("Failed to load subscription for pro-rated funding, skipping",
				slog.String("allocation_id", allocationID),
				slog.String("error", err.Error()))
			continue
		}
		if !sub.Status.FundingEligible() {
			logger.Warn("Subscription not funding-eligible, skipping",
				slog.String("subscription_id", sub.SubscriptionID),
				slog.String("status", string(sub.Status)))
			continue
		}

		// Capped: pro-rated funding must never exceed the commitment even
		// under rounding drift, and funded capital never decreases.
		newFunded := money.Round(sub.FundedAmount.Add(contribution))
		if newFunded.GreaterThan(sub.Commitment) {
			newFunded = sub.Commitment
		}
		if !newFunded.GreaterThan(sub.FundedAmount) {
			continue
		}

		if err := s.subscriptionRepo.UpdateSubscriptionFunding(ctx, sub.SubscriptionID, newFunded, domain.SubscriptionPartiallyFunded, actingUserID, now); err != nil {
			logger.Error("Failed to persist pro-rated funding, continuing",
				slog.String("subscription_id", sub.SubscriptionID),
				slog.String("error", err.Error()))
			continue
		}

		s.auditSvc.Emit(ctx, "subscription_funding_prorated", "subscription", sub.SubscriptionID, map[string]any{
			"invoice_id":             invoice.InvoiceID,
			"payment_ratio":          paymentRatio.String(),
			"previous_funded_amount": sub.FundedAmount.String(),
			"new_funded_amount":      newFunded.String(),
		}, actingUserID)
	}

	return nil
}

// flatFeeTotalsByAllocation sums each fee event's contribution per allocation,
// scaled by ratio (1 for full payment). Events without an allocation id cannot
// fund anything and are excluded.
func (s *fundingService) flatFeeTotalsByAllocation(ctx context.Context, invoiceID string, ratio decimal.Decimal) (map[string]decimal.Decimal, error) {
	events, err := s.feeEventRepo.FindFlatFeeEventsByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flat fee events for invoice %s: %w", invoiceID, err)
	}

	totals := make(map[string]decimal.Decimal)
	for _, ev := range events {
		if ev.AllocationID == nil {
			continue
		}
		contribution := ev.ComputedAmount.Mul(ratio)
		totals[*ev.AllocationID] = totals[*ev.AllocationID].Add(contribution)
	}
	return totals, nil
}

// fundingStatus derives the subscription status from the funding ratio.
// Unchanged when no funding has accumulated.
func fundingStatus(funded, commitment decimal.Decimal, current domain.SubscriptionStatus) domain.SubscriptionStatus {
	ratio := decimal.Zero
	if commitment.IsPositive() {
		ratio = funded.Div(commitment).Mul(hundred)
	}
	switch {
	case ratio.GreaterThanOrEqual(fundedThreshold):
		return domain.SubscriptionFunded
	case ratio.IsPositive():
		return domain.SubscriptionPartiallyFunded
	default:
		return current
	}
}

// sortedAllocationIDs returns the map keys sorted for deterministic processing.
func sortedAllocationIDs(totals map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
