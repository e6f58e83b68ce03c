package plans

import (
	"fmt"
	"strings"
)

type Tier string

// Tier constants (single source of truth)
const (
	TierEssential    Tier = "essential"
	TierProfessional Tier = "professional"
	TierPremium      Tier = "premium"
)

// ParseTier normalizes user or Stripe metadata input into a known tier.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(s))); t {
	case TierEssential, TierProfessional, TierPremium:
		return t, nil
	default:
		return "", fmt.Errorf("unknown plan tier %q", s)
	}
}

func (t Tier) String() string { return string(t) }

// rank orders tiers for upgrade/downgrade decisions.
func (t Tier) rank() int {
	switch t {
	case TierEssential:
		return 1
	case TierProfessional:
		return 2
	case TierPremium:
		return 3
	default:
		return 0
	}
}

// IsUpgradeFrom reports whether moving from current to t is an upgrade.
func (t Tier) IsUpgradeFrom(current Tier) bool {
	return t.rank() > current.rank()
}
