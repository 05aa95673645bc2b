package repositories

import (
	"context"
	"time"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FeeEventReader defines read operations for fee events.
type FeeEventReader interface {
	// FindFlatFeeEventsByInvoice retrieves the flat-type fee events attached to
	// an invoice. Only flat fees participate in the funding cascade.
	FindFlatFeeEventsByInvoice(ctx context.Context, invoiceID string) ([]domain.FeeEvent, error)
}

// FeeEventWriter defines write operations for fee events.
type FeeEventWriter interface {
	// MarkFeeEventsPaid bulk-transitions an invoice's fee events from the given
	// statuses to paid.
	MarkFeeEventsPaid(ctx context.Context, invoiceID string, fromStatuses []domain.FeeEventStatus, updatedByUserID string, updatedAt time.Time) error
}

// FeeEventRepositoryFacade combines fee-event repository interfaces.
type FeeEventRepositoryFacade interface {
	FeeEventReader
	FeeEventWriter
}

// SubscriptionReader defines read operations for subscriptions.
type SubscriptionReader interface {
	// FindSubscriptionByID retrieves a subscription by its unique identifier.
	FindSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
}

// SubscriptionWriter defines write operations for subscriptions.
type SubscriptionWriter interface {
	// UpdateSubscriptionFunding persists a new funded amount and status.
	UpdateSubscriptionFunding(ctx context.Context, subscriptionID string, fundedAmount decimal.Decimal, status domain.SubscriptionStatus, updatedByUserID string, updatedAt time.Time) error
}

// SubscriptionRepositoryFacade combines subscription repository interfaces.
type SubscriptionRepositoryFacade interface {
	SubscriptionReader
	SubscriptionWriter
}

// AuditRepositoryFacade appends structured audit records. Append failures must
// never fail the operation being audited.
type AuditRepositoryFacade interface {
	AppendAuditLog(ctx context.Context, entry domain.AuditEntry) error
}
