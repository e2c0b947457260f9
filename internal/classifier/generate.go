package classifier

// OutputGenerator assembles the canonical swap records from the upstream
// stage results. Its preconditions are hard failures: an unresolved swapper
// or a wrong-signed entry/exit delta means an upstream stage is buggy, and
// the run aborts with an InvariantViolationError instead of coercing.
type OutputGenerator struct {
	registry   *Registry
	direction  *DirectionClassifier
	normalizer AmountNormalizer
}

// NewOutputGenerator creates an output generator.
func NewOutputGenerator(registry *Registry) *OutputGenerator {
	return &OutputGenerator{
		registry:  registry,
		direction: NewDirectionClassifier(registry),
	}
}

// Generate emits one ParsedSwap, or a SELL-then-BUY pair when the route must
// be split into two synthetic legs.
func (g *OutputGenerator) Generate(tx Transaction, swapper SwapperResult, detection SplitDetection, filtered FilteredChanges, collapsed bool) ([]ParsedSwap, error) {
	if !swapper.Resolved() {
		return nil, invariantf("output_generator", "invoked with unresolved swapper for %s; upstream must erase first", tx.Signature)
	}
	if detection.Entry.Delta.Sign() >= 0 {
		return nil, invariantf("output_generator", "entry asset %s delta %s is not negative", detection.Entry.Mint, detection.Entry.Delta)
	}
	if detection.Exit.Delta.Sign() <= 0 {
		return nil, invariantf("output_generator", "exit asset %s delta %s is not positive", detection.Exit.Mint, detection.Exit.Delta)
	}

	if !detection.SplitRequired {
		direction := g.direction.Classify(detection.Entry, detection.Exit)
		amounts := g.normalizer.Normalize(detection.Entry, detection.Exit, direction)

		base, quote := detection.Exit, detection.Entry
		if direction == DirectionSell {
			base, quote = detection.Entry, detection.Exit
		}
		return []ParsedSwap{
			g.record(tx, swapper, direction, base, quote, amounts, filtered, collapsed),
		}, nil
	}

	if detection.Intermediate == nil {
		return nil, invariantf("output_generator", "split required for %s but no intermediate asset selected", tx.Signature)
	}
	mid := *detection.Intermediate

	// Synthetic legs reuse the intermediate's gross flows: the sell leg
	// received mid.GrossIn, the buy leg spent mid.GrossOut.
	sellExit := AssetDelta{Mint: mid.Mint, Symbol: mid.Symbol, Decimals: mid.Decimals, Delta: mid.GrossIn}
	buyEntry := AssetDelta{Mint: mid.Mint, Symbol: mid.Symbol, Decimals: mid.Decimals, Delta: mid.GrossOut.Neg()}

	sellAmounts := g.normalizer.Normalize(detection.Entry, sellExit, DirectionSell)
	buyAmounts := g.normalizer.Normalize(buyEntry, detection.Exit, DirectionBuy)

	return []ParsedSwap{
		g.record(tx, swapper, DirectionSell, detection.Entry, sellExit, sellAmounts, filtered, collapsed),
		g.record(tx, swapper, DirectionBuy, detection.Exit, buyEntry, buyAmounts, filtered, collapsed),
	}, nil
}

func (g *OutputGenerator) record(tx Transaction, swapper SwapperResult, direction Direction, base, quote AssetDelta, amounts Amounts, filtered FilteredChanges, collapsed bool) ParsedSwap {
	return ParsedSwap{
		Signature:     tx.Signature,
		Timestamp:     tx.Timestamp,
		Swapper:       swapper.Swapper,
		Confidence:    swapper.Confidence,
		Method:        swapper.Method,
		Protocol:      g.registry.Protocol,
		Direction:     direction,
		BaseMint:      base.Mint,
		BaseSymbol:    base.Symbol,
		BaseDecimals:  base.Decimals,
		QuoteMint:     quote.Mint,
		QuoteSymbol:   quote.Symbol,
		QuoteDecimals: quote.Decimals,
		BaseAmount:    amounts.Base,
		QuoteAmount:   amounts.Quote,

		RentRefundsFiltered:         filtered.RentRefundsFiltered(),
		IntermediateAssetsCollapsed: collapsed,
	}
}
