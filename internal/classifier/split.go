package classifier

import (
	"fmt"
	"sort"
)

// SplitDetector decides whether a transaction is a single two-party swap or
// a token-to-token route that must be reported as two discrete trades.
type SplitDetector struct {
	registry *Registry
}

// NewSplitDetector creates a split detector.
func NewSplitDetector(registry *Registry) *SplitDetector {
	return &SplitDetector{registry: registry}
}

// Detect selects the entry asset (most negative net delta) and exit asset
// (most positive net delta) among non-intermediate assets. It returns
// ErrNoTradableAssets when nothing survives the intermediate collapse and
// ErrOneSidedFlow when the survivors do not include both an outflow and an
// inflow, rather than picking arbitrary assets.
//
// SplitRequired is set when the route passes through an economically
// significant intermediate leg: TokenA -> SOL -> TokenB is then reported as
// "sell TokenA for SOL" plus "buy TokenB with SOL" instead of a collapsed
// TokenA-for-TokenB record.
func (d *SplitDetector) Detect(deltas map[string]AssetDelta) (SplitDetection, error) {
	var active, intermediates []AssetDelta
	for _, delta := range deltas {
		if delta.IsIntermediate {
			intermediates = append(intermediates, delta)
		} else {
			active = append(active, delta)
		}
	}
	if len(active) == 0 {
		return SplitDetection{}, ErrNoTradableAssets
	}

	sort.Slice(active, func(a, b int) bool {
		if cmp := active[a].Delta.Cmp(active[b].Delta); cmp != 0 {
			return cmp < 0
		}
		return active[a].Mint < active[b].Mint
	})

	entry := active[0]
	exit := active[len(active)-1]
	if entry.Delta.Sign() >= 0 || exit.Delta.Sign() <= 0 {
		return SplitDetection{}, ErrOneSidedFlow
	}

	detection := SplitDetection{Entry: entry, Exit: exit}

	if route := d.significantIntermediate(intermediates); route != nil {
		detection.SplitRequired = true
		detection.Intermediate = route
		detection.SplitReason = fmt.Sprintf(
			"route through intermediate %s (gross in %s, gross out %s)",
			route.Symbol, route.GrossIn, route.GrossOut,
		)
	}

	return detection, nil
}

// significantIntermediate returns the intermediate asset with the largest
// combined gross flow whose legs both clear the significance threshold, or
// nil when every intermediate is mere dust.
func (d *SplitDetector) significantIntermediate(intermediates []AssetDelta) *AssetDelta {
	sort.Slice(intermediates, func(a, b int) bool {
		volA := intermediates[a].GrossIn.Add(intermediates[a].GrossOut)
		volB := intermediates[b].GrossIn.Add(intermediates[b].GrossOut)
		if cmp := volA.Cmp(volB); cmp != 0 {
			return cmp > 0
		}
		return intermediates[a].Mint < intermediates[b].Mint
	})

	for _, candidate := range intermediates {
		if candidate.GrossIn.GreaterThanOrEqual(d.registry.SignificanceThreshold) &&
			candidate.GrossOut.GreaterThanOrEqual(d.registry.SignificanceThreshold) {
			route := candidate
			return &route
		}
	}
	return nil
}
