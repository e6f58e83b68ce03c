package access

import (
	"time"

	"salonbook/internal/domain/plans"
	"salonbook/internal/domain/tenants"
)

type Policy struct {
	State        AccessState        `json:"state"`
	Plan         plans.Tier         `json:"plan"`
	Entitlements plans.Entitlements `json:"entitlements"`
	Features     []plans.Feature    `json:"features"`
}

var allFeatures = []plans.Feature{
	plans.FeatureOnlineBooking,
	plans.FeatureWhatsAppReminders,
	plans.FeatureFinancialDashboard,
	plans.FeatureAdvancedReports,
	plans.FeatureCustomBranding,
	plans.FeatureMultipleLocations,
}

func ComputeState(now time.Time, t tenants.Tenant) AccessState {
	if tenants.IsActive(t, now) {
		return AccessFull
	}
	if t.PlanStatus == tenants.StatusCanceled || !t.HasSubscription() {
		return AccessLocked
	}
	return AccessLimited
}

// ComputePolicy derives what a tenant may use right now. Only full access
// unlocks the tier's features; the entitlements are still reported so the
// UI can show what the plan would include.
func ComputePolicy(now time.Time, t tenants.Tenant, catalog plans.Catalog) Policy {
	state := ComputeState(now, t)
	ent := catalog.EntitlementsFor(t.PlanTier)

	features := []plans.Feature{}
	if state == AccessFull {
		for _, f := range allFeatures {
			if ent.Allows(f) {
				features = append(features, f)
			}
		}
	}

	return Policy{
		State:        state,
		Plan:         t.PlanTier,
		Entitlements: ent,
		Features:     features,
	}
}

// Allows reports whether the policy unlocks f.
func (p Policy) Allows(f plans.Feature) bool {
	for _, have := range p.Features {
		if have == f {
			return true
		}
	}
	return false
}
