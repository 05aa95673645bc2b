package domain

import "github.com/shopspring/decimal"

// FeeType distinguishes flat fees from rate-derived ones. Only flat fees
// participate in the funding cascade.
type FeeType string

const (
	FeeFlat        FeeType = "flat"
	FeeManagement  FeeType = "management"
	FeePerformance FeeType = "performance"
)

// FeeEventStatus is the settlement state of a fee event.
type FeeEventStatus string

const (
	FeeAccrued  FeeEventStatus = "accrued"
	FeeInvoiced FeeEventStatus = "invoiced"
	FeePaid     FeeEventStatus = "paid"
)

// FeeEvent is a fee charged on an invoice, attributed to the subscription
// allocation that generated it. Events without an allocation are excluded
// from funding.
type FeeEvent struct {
	FeeEventID     string          `json:"feeEventID"`
	InvoiceID      string          `json:"invoiceID"`
	AllocationID   *string         `json:"allocationID,omitempty"` // Subscription reference
	FeeType        FeeType         `json:"feeType"`
	ComputedAmount decimal.Decimal `json:"computedAmount"`
	Status         FeeEventStatus  `json:"status"`
	AuditFields
}
