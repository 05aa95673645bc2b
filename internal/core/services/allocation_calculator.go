package services

import (
	"errors"
	"fmt"

	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/utils/money"
	"github.com/shopspring/decimal"
)

var (
	ErrTransactionFullyAllocated = errors.New("bank transaction is already fully allocated")
	ErrInvoiceFullyPaid          = errors.New("invoice is already fully paid")
	ErrMatchAmountTooSmall       = errors.New("match amount rounds to zero")
)

// AllocationInput carries the figures the calculator needs. Remainders are
// expected pre-rounded by the resolver.
type AllocationInput struct {
	TransactionAmount    decimal.Decimal
	PriorAllocated       decimal.Decimal // Sum of approved matches before this one
	TransactionRemainder decimal.Decimal
	InvoiceRemainder     decimal.Decimal
	RequestedAmount      *decimal.Decimal // Optional caller-supplied cap
}

// AllocationResult is the computed allocation and its classification.
type AllocationResult struct {
	Amount    decimal.Decimal
	MatchType domain.MatchType
}

// CalculateAllocation computes how much of a transaction's remainder to
// allocate to an invoice and classifies the match. Pure function, no side
// effects.
//
// When rounding leaves both sides arguably satisfied, invoice completion wins
// the classification: invoice closure is the business-visible event that
// drives the funding cascade.
func CalculateAllocation(in AllocationInput) (AllocationResult, error) {
	if money.IsNegligible(in.TransactionRemainder) {
		return AllocationResult{}, fmt.Errorf("%w: remainder is %s", ErrTransactionFullyAllocated, in.TransactionRemainder.String())
	}
	if money.IsNegligible(in.InvoiceRemainder) {
		return AllocationResult{}, fmt.Errorf("%w: remainder is %s", ErrInvoiceFullyPaid, in.InvoiceRemainder.String())
	}

	candidate := decimal.Min(in.InvoiceRemainder, in.TransactionRemainder)
	if in.RequestedAmount != nil && in.RequestedAmount.IsPositive() {
		candidate = decimal.Min(candidate, *in.RequestedAmount)
	}

	candidate = money.Round(candidate)
	if money.IsNegligible(candidate) {
		return AllocationResult{}, fmt.Errorf("%w: candidate is %s", ErrMatchAmountTooSmall, candidate.String())
	}

	coversInvoice := money.WithinEpsilon(candidate, in.InvoiceRemainder)
	coversTransaction := money.WithinEpsilon(in.PriorAllocated.Add(candidate), in.TransactionAmount)

	var matchType domain.MatchType
	switch {
	case coversInvoice && coversTransaction:
		matchType = domain.MatchExact
	case coversInvoice:
		matchType = domain.MatchSplit
	case coversTransaction:
		matchType = domain.MatchCombined
	default:
		matchType = domain.MatchPartial
	}

	return AllocationResult{Amount: candidate, MatchType: matchType}, nil
}
