package entitlements

// CanCreateConversion reports whether a user with the given tier and monthly
// usage may start another conversion. Strict less-than: at the limit denies.
func CanCreateConversion(tier Tier, used int) (bool, error) {
	limits, err := LimitsFor(tier)
	if err != nil {
		return false, err
	}
	return used < limits.ConversionsPerMonth, nil
}

// CanRegenerate reports whether another output version may be produced for a
// conversion/format pair that already has versionCount versions. The original
// version does not count as a regeneration, hence the +1.
func CanRegenerate(tier Tier, versionCount int) (bool, error) {
	limits, err := LimitsFor(tier)
	if err != nil {
		return false, err
	}
	return versionCount < limits.RegeneratesPerConversion+1, nil
}

// RemainingConversions returns how many conversions are left this month,
// never negative even when usage has overshot the limit.
func RemainingConversions(tier Tier, used int) (int, error) {
	limits, err := LimitsFor(tier)
	if err != nil {
		return 0, err
	}
	return max(0, limits.ConversionsPerMonth-used), nil
}

// ShouldWatermark reports whether generated content carries the product
// watermark. Only the free tier is watermarked.
func ShouldWatermark(tier Tier) bool {
	return tier == TierFree
}
