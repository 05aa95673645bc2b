package models

import "github.com/shopspring/decimal"

// SubscriptionStatus mirrors domain.SubscriptionStatus at the persistence layer.
type SubscriptionStatus string

// Subscription is the subscriptions row.
type Subscription struct {
	SubscriptionID string             `db:"subscription_id"`
	Commitment     decimal.Decimal    `db:"commitment"`
	FundedAmount   decimal.Decimal    `db:"funded_amount"`
	Status         SubscriptionStatus `db:"status"`
	AuditFields
}

// FeeType mirrors domain.FeeType at the persistence layer.
type FeeType string

// FeeEventStatus mirrors domain.FeeEventStatus at the persistence layer.
type FeeEventStatus string

// FeeEvent is the fee_events row.
type FeeEvent struct {
	FeeEventID     string          `db:"fee_event_id"`
	InvoiceID      string          `db:"invoice_id"`
	AllocationID   *string         `db:"allocation_id"`
	FeeType        FeeType         `db:"fee_type"`
	ComputedAmount decimal.Decimal `db:"computed_amount"`
	Status         FeeEventStatus  `db:"status"`
	AuditFields
}
