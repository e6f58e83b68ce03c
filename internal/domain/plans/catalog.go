package plans

import "sort"

type Feature string

const (
	FeatureOnlineBooking      Feature = "online_booking"
	FeatureWhatsAppReminders  Feature = "whatsapp_reminders"
	FeatureFinancialDashboard Feature = "financial_dashboard"
	FeatureAdvancedReports    Feature = "advanced_reports"
	FeatureCustomBranding     Feature = "custom_branding"
	FeatureMultipleLocations  Feature = "multiple_locations"
)

// Entitlements are derived from the tier and never persisted.
// Zero limits mean unlimited.
type Entitlements struct {
	MaxProfessionals       int  `json:"maxProfessionals"`
	MaxMonthlyAppointments int  `json:"maxMonthlyAppointments"`
	HasOnlineBooking       bool `json:"hasOnlineBooking"`
	HasWhatsAppReminders   bool `json:"hasWhatsAppReminders"`
	HasFinancialDashboard  bool `json:"hasFinancialDashboard"`
	HasAdvancedReports     bool `json:"hasAdvancedReports"`
	HasCustomBranding      bool `json:"hasCustomBranding"`
	HasMultipleLocations   bool `json:"hasMultipleLocations"`
}

func (e Entitlements) Allows(f Feature) bool {
	switch f {
	case FeatureOnlineBooking:
		return e.HasOnlineBooking
	case FeatureWhatsAppReminders:
		return e.HasWhatsAppReminders
	case FeatureFinancialDashboard:
		return e.HasFinancialDashboard
	case FeatureAdvancedReports:
		return e.HasAdvancedReports
	case FeatureCustomBranding:
		return e.HasCustomBranding
	case FeatureMultipleLocations:
		return e.HasMultipleLocations
	default:
		return false
	}
}

type Plan struct {
	Tier          Tier         `json:"tier"`
	Name          string       `json:"name"`
	PriceCents    int64        `json:"priceCents"`
	Currency      string       `json:"currency"`
	Interval      string       `json:"interval"`
	StripePriceID string       `json:"stripePriceId,omitempty"`
	Entitlements  Entitlements `json:"entitlements"`
}

var defaultPlans = []Plan{
	{
		Tier:       TierEssential,
		Name:       "Essencial",
		PriceCents: 4990,
		Entitlements: Entitlements{
			MaxProfessionals:       2,
			MaxMonthlyAppointments: 300,
			HasOnlineBooking:       true,
		},
	},
	{
		Tier:       TierProfessional,
		Name:       "Profissional",
		PriceCents: 8990,
		Entitlements: Entitlements{
			MaxProfessionals:      5,
			HasOnlineBooking:      true,
			HasWhatsAppReminders:  true,
			HasFinancialDashboard: true,
		},
	},
	{
		Tier:       TierPremium,
		Name:       "Premium",
		PriceCents: 14990,
		Entitlements: Entitlements{
			HasOnlineBooking:      true,
			HasWhatsAppReminders:  true,
			HasFinancialDashboard: true,
			HasAdvancedReports:    true,
			HasCustomBranding:     true,
			HasMultipleLocations:  true,
		},
	},
}

// Catalog is the immutable tier -> plan mapping. Build it once with
// NewCatalog and share it by value.
type Catalog struct {
	plans   map[Tier]Plan
	byPrice map[string]Tier
}

// NewCatalog binds the static plans to their Stripe price IDs. Tiers missing
// from priceIDs stay purchasable only once a price is configured.
func NewCatalog(priceIDs map[Tier]string) Catalog {
	c := Catalog{
		plans:   make(map[Tier]Plan, len(defaultPlans)),
		byPrice: make(map[string]Tier, len(priceIDs)),
	}
	for _, p := range defaultPlans {
		p.Currency = "brl"
		p.Interval = "month"
		p.StripePriceID = priceIDs[p.Tier]
		if p.StripePriceID != "" {
			c.byPrice[p.StripePriceID] = p.Tier
		}
		c.plans[p.Tier] = p
	}
	return c
}

func (c Catalog) Plan(t Tier) (Plan, bool) {
	p, ok := c.plans[t]
	return p, ok
}

func (c Catalog) TierForPrice(priceID string) (Tier, bool) {
	t, ok := c.byPrice[priceID]
	return t, ok
}

// Plans returns every plan ordered by price.
func (c Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriceCents < out[j].PriceCents })
	return out
}

// EntitlementsFor returns the flags for a tier; unknown tiers get nothing.
func (c Catalog) EntitlementsFor(t Tier) Entitlements {
	return c.plans[t].Entitlements
}

func (c Catalog) Allows(t Tier, f Feature) bool {
	return c.EntitlementsFor(t).Allows(f)
}
