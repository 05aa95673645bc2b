package domain

import "github.com/shopspring/decimal"

// SubscriptionStatus is the lifecycle state of an investor subscription.
type SubscriptionStatus string

const (
	SubscriptionPending         SubscriptionStatus = "pending"
	SubscriptionCommitted       SubscriptionStatus = "committed"
	SubscriptionPartiallyFunded SubscriptionStatus = "partially_funded"
	SubscriptionFunded          SubscriptionStatus = "funded"
	SubscriptionActive          SubscriptionStatus = "active"
	SubscriptionCancelled       SubscriptionStatus = "cancelled"
	SubscriptionWithdrawn       SubscriptionStatus = "withdrawn"
)

// FundingEligible reports whether the funding cascade may credit this status.
// Cancelled or withdrawn subscriptions must never accumulate funded capital.
func (s SubscriptionStatus) FundingEligible() bool {
	switch s {
	case SubscriptionPending, SubscriptionCommitted, SubscriptionPartiallyFunded,
		SubscriptionFunded, SubscriptionActive:
		return true
	}
	return false
}

// Subscription is an investor commitment whose funded capital grows as the fee
// events it generated are settled. FundedAmount is monotonically non-decreasing
// through this service.
type Subscription struct {
	SubscriptionID string             `json:"subscriptionID"`
	Commitment     decimal.Decimal    `json:"commitment"`
	FundedAmount   decimal.Decimal    `json:"fundedAmount"`
	Status         SubscriptionStatus `json:"status"`
	AuditFields
}
