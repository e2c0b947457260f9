package classifier

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Pipeline composes the classification stages over a single transaction.
// It is purely functional over its inputs: the only shared state is the
// read-only Registry, so one Pipeline can classify transactions from many
// goroutines concurrently.
type Pipeline struct {
	registry   *Registry
	identifier SwapperIdentifier
	noise      *NoiseFilter
	collector  *DeltaCollector
	splitter   *SplitDetector
	generator  *OutputGenerator
	logger     zerolog.Logger
}

// NewPipeline wires the stages around a shared registry and the selected
// swapper identification strategy.
func NewPipeline(registry *Registry, identifier SwapperIdentifier, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		registry:   registry,
		identifier: identifier,
		noise:      NewNoiseFilter(registry),
		collector:  NewDeltaCollector(registry),
		splitter:   NewSplitDetector(registry),
		generator:  NewOutputGenerator(registry),
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// Classify runs the full pipeline. The returned error is non-nil only for
// invariant violations, which indicate a bug rather than unclassifiable
// input; expected classification failures come back as Result.Erase.
func (p *Pipeline) Classify(tx Transaction) (Result, error) {
	identification := p.identifier.Identify(tx.FeePayer, tx.Signers, tx.Changes)
	if !identification.Resolved() {
		return p.erase(tx, identification.EraseReason, describeOwners(tx.Changes)), nil
	}

	filtered := p.noise.Filter(tx.Changes, identification.Swapper)
	if len(filtered.Economic) == 0 && len(tx.Transfers) == 0 {
		return p.erase(tx, EraseSwapperNoDelta,
			fmt.Sprintf("no economic changes remain for swapper %s after rent filtering", identification.Swapper)), nil
	}

	var deltas map[string]AssetDelta
	if len(tx.Transfers) > 0 {
		deltas = p.collector.CollectTransfers(tx.Transfers, filtered.Economic, identification.Swapper)
	} else {
		deltas = p.collector.Collect(filtered.Economic)
	}
	if len(deltas) == 0 {
		return p.erase(tx, EraseSwapperNoDelta,
			fmt.Sprintf("no valid asset deltas for swapper %s", identification.Swapper)), nil
	}

	detection, err := p.splitter.Detect(deltas)
	if err != nil {
		if errors.Is(err, ErrNoTradableAssets) || errors.Is(err, ErrOneSidedFlow) {
			return p.erase(tx, EraseSwapperNoDelta, err.Error()), nil
		}
		return Result{}, err
	}

	collapsed := false
	for _, delta := range deltas {
		if delta.IsIntermediate {
			collapsed = true
			break
		}
	}

	swaps, err := p.generator.Generate(tx, identification, detection, filtered, collapsed)
	if err != nil {
		return Result{}, err
	}

	p.logger.Debug().
		Str("signature", tx.Signature).
		Str("swapper", identification.Swapper).
		Str("confidence", string(identification.Confidence)).
		Bool("split", detection.SplitRequired).
		Int("records", len(swaps)).
		Msg("Transaction classified")

	return Result{Swaps: swaps}, nil
}

func (p *Pipeline) erase(tx Transaction, reason EraseReason, debug string) Result {
	p.logger.Debug().
		Str("signature", tx.Signature).
		Str("reason", string(reason)).
		Str("debug", debug).
		Msg("Transaction erased")

	return Result{Erase: &EraseResult{
		Signature: tx.Signature,
		Reason:    reason,
		DebugInfo: debug,
	}}
}

// describeOwners summarizes the owners with nonzero deltas for erase debug
// output.
func describeOwners(changes []BalanceChange) string {
	seen := make(map[string]struct{})
	var owners []string
	for _, c := range changes {
		if c.Owner == "" || c.Amount.IsZero() {
			continue
		}
		if _, ok := seen[c.Owner]; ok {
			continue
		}
		seen[c.Owner] = struct{}{}
		owners = append(owners, c.Owner)
	}
	sort.Strings(owners)
	return "owners with nonzero deltas: [" + strings.Join(owners, " ") + "]"
}
