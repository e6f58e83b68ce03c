package tenants

import (
	"time"

	"salonbook/internal/infra/stripe"
)

// IsActive is the entitlement rule: an active status, a completed payment and
// a billing period that has not ended yet (a nil period end never expires).
func IsActive(t Tenant, now time.Time) bool {
	if t.PlanStatus != StatusActive || !t.PaymentCompleted {
		return false
	}
	return t.CurrentPeriodEnd == nil || t.CurrentPeriodEnd.After(now)
}

// RepairedStatus is the status an inactive tenant is written back with.
// Canceled tenants stay canceled; anything else falls back to pending.
func RepairedStatus(current PlanStatus) PlanStatus {
	if current == StatusCanceled {
		return StatusCanceled
	}
	return StatusPending
}

// StatusFromStripe maps a Stripe subscription status onto the tenant plan
// status and whether the payment is considered completed.
func StatusFromStripe(stripeStatus string) (PlanStatus, bool) {
	switch stripe.NormalizeStripeStatus(stripeStatus) {
	case "active", "trialing":
		return StatusActive, true
	case "canceled":
		return StatusCanceled, false
	default:
		// past_due, incomplete, paused, none
		return StatusPending, false
	}
}
