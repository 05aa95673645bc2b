package mapping

import (
	"github.com/Ghiles-CTO/Versotech-sub020/internal/core/domain"
	"github.com/Ghiles-CTO/Versotech-sub020/internal/models"
)

// ToDomainSubscription converts a model Subscription to a domain Subscription
func ToDomainSubscription(m models.Subscription) domain.Subscription {
	return domain.Subscription{
		SubscriptionID: m.SubscriptionID,
		Commitment:     m.Commitment,
		FundedAmount:   m.FundedAmount,
		Status:         domain.SubscriptionStatus(m.Status),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainFeeEvent converts a model FeeEvent to a domain FeeEvent
func ToDomainFeeEvent(m models.FeeEvent) domain.FeeEvent {
	return domain.FeeEvent{
		FeeEventID:     m.FeeEventID,
		InvoiceID:      m.InvoiceID,
		AllocationID:   m.AllocationID,
		FeeType:        domain.FeeType(m.FeeType),
		ComputedAmount: m.ComputedAmount,
		Status:         domain.FeeEventStatus(m.Status),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainFeeEventSlice converts a slice of model fee events to domain fee events
func ToDomainFeeEventSlice(ms []models.FeeEvent) []domain.FeeEvent {
	ds := make([]domain.FeeEvent, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFeeEvent(m)
	}
	return ds
}
