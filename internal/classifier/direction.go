package classifier

// DirectionClassifier decides BUY vs SELL for a validated two-asset pair.
// The entry asset is what the swapper gave up, the exit asset what it
// received.
type DirectionClassifier struct {
	registry *Registry
}

// NewDirectionClassifier creates a direction classifier.
func NewDirectionClassifier(registry *Registry) *DirectionClassifier {
	return &DirectionClassifier{registry: registry}
}

// Classify is total over a validated two-asset input: receiving a priority
// asset for a non-priority token is a SELL, everything else is a BUY of the
// received asset. Same-priority-class pairs therefore resolve to BUY with
// the received side as base.
func (c *DirectionClassifier) Classify(entry, exit AssetDelta) Direction {
	if c.registry.IsPriority(exit.Mint) && !c.registry.IsPriority(entry.Mint) {
		return DirectionSell
	}
	return DirectionBuy
}
