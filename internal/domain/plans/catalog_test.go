package plans

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("  Premium ")
	require.NoError(t, err)
	require.Equal(t, TierPremium, tier)

	_, err = ParseTier("advanced")
	require.Error(t, err)
}

func TestCatalogBindsPrices(t *testing.T) {
	c := NewCatalog(map[Tier]string{
		TierEssential:    "price_ess",
		TierProfessional: "price_pro",
	})

	tier, ok := c.TierForPrice("price_pro")
	require.True(t, ok)
	require.Equal(t, TierProfessional, tier)

	_, ok = c.TierForPrice("price_unknown")
	require.False(t, ok)

	premium, ok := c.Plan(TierPremium)
	require.True(t, ok)
	require.Empty(t, premium.StripePriceID)
	require.Equal(t, "brl", premium.Currency)
}

func TestCatalogPlansOrderedByPrice(t *testing.T) {
	plans := NewCatalog(nil).Plans()
	require.Len(t, plans, 3)
	require.Equal(t, TierEssential, plans[0].Tier)
	require.Equal(t, TierProfessional, plans[1].Tier)
	require.Equal(t, TierPremium, plans[2].Tier)
}

func TestEntitlementsFollowTier(t *testing.T) {
	c := NewCatalog(nil)

	require.False(t, c.Allows(TierEssential, FeatureFinancialDashboard))
	require.True(t, c.Allows(TierProfessional, FeatureFinancialDashboard))
	require.False(t, c.Allows(TierProfessional, FeatureCustomBranding))
	require.True(t, c.Allows(TierPremium, FeatureMultipleLocations))
	require.False(t, c.Allows(Tier("gold"), FeatureOnlineBooking))

	require.Equal(t, 2, c.EntitlementsFor(TierEssential).MaxProfessionals)
	require.Zero(t, c.EntitlementsFor(TierPremium).MaxProfessionals)
}

func TestIsUpgradeFrom(t *testing.T) {
	require.True(t, TierPremium.IsUpgradeFrom(TierEssential))
	require.False(t, TierEssential.IsUpgradeFrom(TierProfessional))
	require.False(t, TierProfessional.IsUpgradeFrom(TierProfessional))
}
