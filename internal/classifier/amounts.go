package classifier

import (
	"github.com/shopspring/decimal"
)

// Amounts carries the normalized, unsigned base/quote magnitudes of one swap
// record.
type Amounts struct {
	Base  decimal.Decimal
	Quote decimal.Decimal
}

// AmountNormalizer converts raw signed deltas into unsigned base/quote
// amounts consistent with a chosen direction. Deltas are already
// decimal-scaled by the collector, so only sign and assignment remain.
type AmountNormalizer struct{}

// Normalize assigns magnitudes per direction: on a BUY the received asset is
// the base, on a SELL the spent asset is. Normalizing the same pair under
// BUY and under SELL yields mirrored amounts.
func (AmountNormalizer) Normalize(entry, exit AssetDelta, direction Direction) Amounts {
	spent := entry.Delta.Abs()
	received := exit.Delta.Abs()
	if direction == DirectionBuy {
		return Amounts{Base: received, Quote: spent}
	}
	return Amounts{Base: spent, Quote: received}
}
