package entitlements

// Tier is a subscription level assigned externally at signup or payment time.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
)

// Limits describes what a tier may do. One fixed record per tier.
type Limits struct {
	Name                     string
	Description              string
	ConversionsPerMonth      int
	RegeneratesPerConversion int
}

// planTable is the authoritative lookup table. Both limit fields are
// monotonically non-decreasing across free -> starter -> pro.
var planTable = map[Tier]Limits{
	TierFree: {
		Name:                     "Gratis",
		Description:              "Prueba Distribuia con 2 conversiones al mes.",
		ConversionsPerMonth:      2,
		RegeneratesPerConversion: 1,
	},
	TierStarter: {
		Name:                     "Starter",
		Description:              "Para creadores que publican cada semana.",
		ConversionsPerMonth:      10,
		RegeneratesPerConversion: 3,
	},
	TierPro: {
		Name:                     "Pro",
		Description:              "Para equipos y agencias con publicación diaria.",
		ConversionsPerMonth:      50,
		RegeneratesPerConversion: 10,
	},
}

// LimitsFor returns the limits record for a tier. An unknown tier returns
// ErrUnknownPlan rather than defaulting; the caller decides how to surface a
// misconfigured account.
func LimitsFor(tier Tier) (Limits, error) {
	limits, ok := planTable[tier]
	if !ok {
		return Limits{}, ErrUnknownPlan
	}
	return limits, nil
}

// Tiers returns all known tiers in ascending order.
func Tiers() []Tier {
	return []Tier{TierFree, TierStarter, TierPro}
}
