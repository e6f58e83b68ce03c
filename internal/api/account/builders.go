package account

import (
	"time"

	"salonbook/internal/domain/access"
	"salonbook/internal/domain/billing"
	"salonbook/internal/domain/plans"
	"salonbook/internal/domain/tenants"
	"salonbook/internal/infra/stripe"
)

func BuildPlanDTO(catalog plans.Catalog, tier plans.Tier) *PlanDTO {
	p, ok := catalog.Plan(tier)
	if !ok {
		return nil
	}
	return &PlanDTO{
		Tier:       p.Tier,
		Name:       p.Name,
		Interval:   p.Interval,
		PriceCents: p.PriceCents,
		Currency:   p.Currency,
	}
}

// BuildSubscriptionDTO prefers the mirrored processor row; without one it
// falls back to what the tenant row knows.
func BuildSubscriptionDTO(t tenants.Tenant, mirror *billing.Subscription) *SubscriptionDTO {
	if !t.HasSubscription() {
		return nil
	}
	dto := &SubscriptionDTO{
		Status:               stripe.NormalizeStripeStatus(string(t.PlanStatus)),
		CurrentPeriodEnd:     t.CurrentPeriodEnd,
		StripeSubscriptionID: t.StripeSubscriptionID,
		StripeScheduleID:     t.StripeScheduleID,
	}
	if mirror != nil {
		dto.Status = stripe.NormalizeStripeStatus(mirror.Status)
		dto.CancelAtPeriodEnd = mirror.CancelAtPeriodEnd
		if mirror.CurrentPeriodEnd != nil {
			dto.CurrentPeriodEnd = mirror.CurrentPeriodEnd
		}
	}
	return dto
}

func BuildPendingChangeDTO(catalog plans.Catalog, t tenants.Tenant) *PendingChangeDTO {
	if t.PendingPlanTier == nil || t.PendingPlanStartDate == nil {
		return nil
	}
	return &PendingChangeDTO{
		EffectiveAt: t.PendingPlanStartDate,
		Plan:        BuildPlanDTO(catalog, *t.PendingPlanTier),
	}
}

// daysLeft counts whole days until the period ends; nil when it never does.
func daysLeft(now time.Time, end *time.Time) *int {
	if end == nil {
		return nil
	}
	d := 0
	if now.Before(*end) {
		d = int(end.Sub(now).Hours() / 24)
	}
	return &d
}

func BuildAccessDTO(now time.Time, t tenants.Tenant, policy access.Policy) AccessDTO {
	return AccessDTO{
		State:        string(policy.State),
		Features:     policy.Features,
		Entitlements: policy.Entitlements,
		DaysLeft:     daysLeft(now, t.CurrentPeriodEnd),
	}
}
