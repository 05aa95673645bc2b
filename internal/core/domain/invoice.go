package domain

import "github.com/shopspring/decimal"

// InvoiceStatus indicates the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceOpen          InvoiceStatus = "open"
	InvoicePartiallyPaid InvoiceStatus = "partially_paid"
	InvoicePaid          InvoiceStatus = "paid"
)

// Invoice represents a receivable that bank transactions are matched against.
// Its payment fields are mutated by the store's atomic apply step; this service
// only reads the resulting state.
type Invoice struct {
	InvoiceID    string           `json:"invoiceID"`
	Total        decimal.Decimal  `json:"total"`
	PaidAmount   decimal.Decimal  `json:"paidAmount"`
	BalanceDue   *decimal.Decimal `json:"balanceDue,omitempty"` // Derived when not stored
	CurrencyCode string           `json:"currencyCode"`
	Status       InvoiceStatus    `json:"status"`
	MatchStatus  string           `json:"matchStatus"`
	AuditFields
}

// RemainingBalance returns the unpaid portion of the invoice: the stored
// balance_due when present, otherwise max(total - paid, 0).
func (i Invoice) RemainingBalance() decimal.Decimal {
	if i.BalanceDue != nil {
		return *i.BalanceDue
	}
	remaining := i.Total.Sub(i.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
