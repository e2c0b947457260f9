package classifier

import (
	"github.com/shopspring/decimal"
)

// DeltaCollector aggregates filtered balance changes into one net delta per
// mint. Owner filtering already happened upstream in the NoiseFilter, so
// everything passed in counts.
type DeltaCollector struct {
	registry *Registry
}

// NewDeltaCollector creates a collector backed by the given registry.
func NewDeltaCollector(registry *Registry) *DeltaCollector {
	return &DeltaCollector{registry: registry}
}

// Collect sums signed deltas per mint from account-level balance changes.
// Malformed records (missing mint, negative decimals) are skipped rather
// than aborting the transaction. Assets whose net lands within the
// intermediate epsilon are marked as routing legs.
func (c *DeltaCollector) Collect(economic []BalanceChange) map[string]AssetDelta {
	acc := newDeltaAccumulator()
	for _, change := range economic {
		if change.Mint == "" || change.Decimals < 0 {
			continue
		}
		acc.add(change.Mint, change.Decimals, change.Amount)
	}
	return acc.finish(c.registry)
}

// CollectTransfers aggregates itemized transfer records for the swapper,
// merging in account-level changes where transfers are silent.
//
// Transfer sums reflect the exact swap leg while account-level native deltas
// are fee-netted, so transfers win for the native asset whenever any exist.
// Token mints are aggregated from transfers first and account-level records
// fill in only mints with no transfer at all, so no leg is lost when it
// appears in a single data shape.
func (c *DeltaCollector) CollectTransfers(transfers []Transfer, economic []BalanceChange, swapper string) map[string]AssetDelta {
	acc := newDeltaAccumulator()

	transferMints := make(map[string]struct{})
	for _, t := range transfers {
		if t.Mint == "" || t.Decimals < 0 || t.Amount.Sign() <= 0 {
			continue
		}
		if t.FromOwner != swapper && t.ToOwner != swapper {
			continue
		}
		transferMints[t.Mint] = struct{}{}
		if t.ToOwner == swapper {
			acc.add(t.Mint, t.Decimals, t.Amount)
		}
		if t.FromOwner == swapper {
			acc.add(t.Mint, t.Decimals, t.Amount.Neg())
		}
	}

	for _, change := range economic {
		if change.Mint == "" || change.Decimals < 0 {
			continue
		}
		if _, covered := transferMints[change.Mint]; covered {
			continue
		}
		acc.add(change.Mint, change.Decimals, change.Amount)
	}

	deltas := acc.finish(c.registry)

	// Residual rounding from multi-hop routing leaves a near-zero but not
	// exactly zero net. When both gross legs are significant the asset was
	// borrowed and returned, not held.
	for mint, delta := range deltas {
		if delta.IsIntermediate {
			continue
		}
		if delta.Delta.Abs().LessThan(c.registry.DustThreshold) &&
			delta.GrossIn.GreaterThanOrEqual(c.registry.SignificanceThreshold) &&
			delta.GrossOut.GreaterThanOrEqual(c.registry.SignificanceThreshold) {
			delta.IsIntermediate = true
			deltas[mint] = delta
		}
	}

	return deltas
}

// deltaAccumulator tracks per-mint running sums and gross legs.
type deltaAccumulator struct {
	order  []string
	deltas map[string]*AssetDelta
}

func newDeltaAccumulator() *deltaAccumulator {
	return &deltaAccumulator{deltas: make(map[string]*AssetDelta)}
}

func (a *deltaAccumulator) add(mint string, decimals int32, amount decimal.Decimal) {
	delta, ok := a.deltas[mint]
	if !ok {
		delta = &AssetDelta{Mint: mint, Decimals: decimals}
		a.deltas[mint] = delta
		a.order = append(a.order, mint)
	}
	delta.Delta = delta.Delta.Add(amount)
	if amount.Sign() > 0 {
		delta.GrossIn = delta.GrossIn.Add(amount)
	} else {
		delta.GrossOut = delta.GrossOut.Add(amount.Abs())
	}
}

func (a *deltaAccumulator) finish(registry *Registry) map[string]AssetDelta {
	out := make(map[string]AssetDelta, len(a.deltas))
	for _, mint := range a.order {
		delta := a.deltas[mint]
		delta.Symbol = registry.SymbolFor(mint)
		delta.IsIntermediate = delta.Delta.Abs().LessThan(registry.IntermediateEpsilon)
		out[mint] = *delta
	}
	return out
}
