package classifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SwapperIdentifier resolves which wallet is the economic actor of a
// transaction. Two heuristics exist for this responsibility; the deployment
// selects exactly one and applies it consistently.
type SwapperIdentifier interface {
	Identify(feePayer string, signers []string, changes []BalanceChange) SwapperResult
}

// EscalationIdentifier walks a fixed tier list: fee payer, then primary
// signer, then single-owner analysis, then erase.
type EscalationIdentifier struct {
	registry *Registry
}

// NewEscalationIdentifier creates the escalation-strategy identifier.
func NewEscalationIdentifier(registry *Registry) *EscalationIdentifier {
	return &EscalationIdentifier{registry: registry}
}

// Identify implements SwapperIdentifier.
func (i *EscalationIdentifier) Identify(feePayer string, signers []string, changes []BalanceChange) SwapperResult {
	if feePayer != "" && ownerHasNonzeroDelta(changes, feePayer) {
		return SwapperResult{Swapper: feePayer, Confidence: ConfidenceHigh, Method: MethodFeePayer}
	}

	if len(signers) > 0 && signers[0] != feePayer && ownerHasNonzeroDelta(changes, signers[0]) {
		return SwapperResult{Swapper: signers[0], Confidence: ConfidenceMedium, Method: MethodSigner}
	}

	candidates := i.candidateOwners(changes)
	switch len(candidates) {
	case 1:
		return SwapperResult{Swapper: candidates[0], Confidence: ConfidenceLow, Method: MethodOwnerAnalysis}
	case 0:
		return SwapperResult{Confidence: ConfidenceLow, Method: MethodErase, EraseReason: EraseNoSwapper}
	default:
		return SwapperResult{Confidence: ConfidenceLow, Method: MethodErase, EraseReason: EraseMultipleCandidates}
	}
}

// candidateOwners collects unique owners with nonzero deltas, excluding
// known system/program/pool addresses and program-derived accounts.
func (i *EscalationIdentifier) candidateOwners(changes []BalanceChange) []string {
	seen := make(map[string]struct{})
	var candidates []string
	for _, c := range changes {
		if c.Owner == "" || c.Amount.IsZero() {
			continue
		}
		if _, ok := seen[c.Owner]; ok {
			continue
		}
		seen[c.Owner] = struct{}{}
		if i.registry.IsExcluded(c.Owner) || i.registry.IsDerivedAddress(c.Owner) {
			continue
		}
		candidates = append(candidates, c.Owner)
	}
	sort.Strings(candidates)
	return candidates
}

// LargestDeltaIdentifier ranks owners by the sum of absolute deltas across
// all assets and picks the strictly largest mover. Ties are broken in favor
// of the unique tied owner touching a non-core asset; a remaining tie falls
// back to the fee payer.
type LargestDeltaIdentifier struct {
	registry *Registry
}

// NewLargestDeltaIdentifier creates the largest-economic-delta identifier.
func NewLargestDeltaIdentifier(registry *Registry) *LargestDeltaIdentifier {
	return &LargestDeltaIdentifier{registry: registry}
}

type ownerActivity struct {
	owner   string
	total   decimal.Decimal
	nonCore bool
}

// Identify implements SwapperIdentifier.
func (i *LargestDeltaIdentifier) Identify(feePayer string, signers []string, changes []BalanceChange) SwapperResult {
	ranked := i.rankOwners(changes)

	if len(ranked) > 0 {
		top := ranked[0]
		tied := topTied(ranked)

		if len(tied) == 1 {
			return SwapperResult{Swapper: top.owner, Confidence: ConfidenceHigh, Method: MethodLargestDelta}
		}

		// Prefer the unique tied owner whose delta touches a non-core
		// asset: pools and relayers shuffle SOL and stables, the trader
		// moves the token.
		var nonCore []ownerActivity
		for _, oa := range tied {
			if oa.nonCore {
				nonCore = append(nonCore, oa)
			}
		}
		if len(nonCore) == 1 {
			return SwapperResult{Swapper: nonCore[0].owner, Confidence: ConfidenceMedium, Method: MethodLargestDelta}
		}
	}

	if feePayer != "" && ownerHasNonzeroDelta(changes, feePayer) {
		return SwapperResult{Swapper: feePayer, Confidence: ConfidenceLow, Method: MethodFeePayer}
	}

	if len(ranked) == 0 {
		return SwapperResult{Confidence: ConfidenceLow, Method: MethodErase, EraseReason: EraseNoSwapper}
	}
	return SwapperResult{Confidence: ConfidenceLow, Method: MethodErase, EraseReason: EraseMultipleCandidates}
}

// rankOwners computes per-owner absolute delta sums, largest first. Owner
// name breaks equal totals so ordering is deterministic.
func (i *LargestDeltaIdentifier) rankOwners(changes []BalanceChange) []ownerActivity {
	byOwner := make(map[string]*ownerActivity)
	for _, c := range changes {
		if c.Owner == "" || c.Amount.IsZero() {
			continue
		}
		if i.registry.IsExcluded(c.Owner) || i.registry.IsDerivedAddress(c.Owner) {
			continue
		}
		oa, ok := byOwner[c.Owner]
		if !ok {
			oa = &ownerActivity{owner: c.Owner}
			byOwner[c.Owner] = oa
		}
		oa.total = oa.total.Add(c.Amount.Abs())
		if !i.registry.IsPriority(c.Mint) {
			oa.nonCore = true
		}
	}

	ranked := make([]ownerActivity, 0, len(byOwner))
	for _, oa := range byOwner {
		ranked = append(ranked, *oa)
	}
	sort.Slice(ranked, func(a, b int) bool {
		if cmp := ranked[a].total.Cmp(ranked[b].total); cmp != 0 {
			return cmp > 0
		}
		return ranked[a].owner < ranked[b].owner
	})
	return ranked
}

// topTied returns the leading run of owners whose totals equal the top total.
func topTied(ranked []ownerActivity) []ownerActivity {
	if len(ranked) == 0 {
		return nil
	}
	tied := []ownerActivity{ranked[0]}
	for _, oa := range ranked[1:] {
		if !oa.total.Equal(ranked[0].total) {
			break
		}
		tied = append(tied, oa)
	}
	return tied
}

// NewIdentifier returns the identifier selected by name. Escalation is the
// default strategy.
func NewIdentifier(strategy string, registry *Registry) (SwapperIdentifier, error) {
	switch strings.ToLower(strategy) {
	case "", "escalation":
		return NewEscalationIdentifier(registry), nil
	case "largest_delta":
		return NewLargestDeltaIdentifier(registry), nil
	default:
		return nil, fmt.Errorf("unknown swapper strategy: %s", strategy)
	}
}

func ownerHasNonzeroDelta(changes []BalanceChange, owner string) bool {
	for _, c := range changes {
		if c.Owner == owner && !c.Amount.IsZero() {
			return true
		}
	}
	return false
}
