package classifier

import (
	"github.com/wnt/swaplens/internal/utils"
)

// NoiseFilter strips non-economic balance changes before delta aggregation.
//
// Closing a token account issued during a swap refunds a small native-asset
// rent deposit that is not part of the trade. Without exclusion that refund
// would misclassify a pure token sell as a two-asset swap or corrupt the
// BUY/SELL decision.
type NoiseFilter struct {
	registry *Registry
}

// NewNoiseFilter creates a noise filter backed by the given registry.
func NewNoiseFilter(registry *Registry) *NoiseFilter {
	return &NoiseFilter{registry: registry}
}

// Filter partitions the swapper-owned balance changes into economic changes
// and rent-refund noise. Changes owned by other accounts are dropped here;
// the delta collector trusts the economic subset without re-filtering.
func (f *NoiseFilter) Filter(changes []BalanceChange, swapper string) FilteredChanges {
	owned := utils.Filter(changes, func(c BalanceChange) bool {
		return c.Owner == swapper
	})

	hasNonNativeActivity := false
	for _, c := range owned {
		if !f.registry.IsNative(c.Mint) && !c.Amount.IsZero() {
			hasNonNativeActivity = true
			break
		}
	}

	var filtered FilteredChanges
	for _, c := range owned {
		if f.isRentRefund(c, hasNonNativeActivity) {
			filtered.NonEconomic = append(filtered.NonEconomic, c)
		} else {
			filtered.Economic = append(filtered.Economic, c)
		}
	}
	return filtered
}

// isRentRefund applies the rent-noise rule: a small positive native-asset
// change is a rent refund only when the transaction also moved a non-native
// asset. A lone native inflow with no token activity is a plain transfer and
// must be kept.
func (f *NoiseFilter) isRentRefund(c BalanceChange, hasNonNativeActivity bool) bool {
	if !hasNonNativeActivity {
		return false
	}
	if !f.registry.IsNative(c.Mint) {
		return false
	}
	if c.Amount.Sign() <= 0 {
		return false
	}
	return c.Amount.Abs().LessThan(f.registry.RentThreshold)
}
