package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wnt/swaplens/internal/classifier"
)

func TestNewParsedSwaps(t *testing.T) {
	ts := time.Unix(1700000000, 0).UTC()
	swaps := []classifier.ParsedSwap{
		{
			Signature:  "sig-split",
			Timestamp:  ts,
			Swapper:    "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
			Confidence: classifier.ConfidenceHigh,
			Method:     classifier.MethodFeePayer,
			Protocol:   "jupiter",
			Direction:  classifier.DirectionSell,
			BaseMint:   "MintA", BaseSymbol: "AAA", BaseDecimals: 5,
			QuoteMint: classifier.WrappedSOLMint, QuoteSymbol: "SOL", QuoteDecimals: 9,
			BaseAmount:                  decimal.RequireFromString("500"),
			QuoteAmount:                 decimal.RequireFromString("10"),
			IntermediateAssetsCollapsed: true,
		},
		{
			Signature: "sig-split",
			Direction: classifier.DirectionBuy,
			BaseMint:  "MintB",
		},
	}

	rows := NewParsedSwaps(7, swaps)
	require.Len(t, rows, 2)

	assert.Equal(t, uint(7), rows[0].WalletID)
	assert.Equal(t, 0, rows[0].Leg)
	assert.Equal(t, 1, rows[1].Leg)
	assert.Equal(t, "SELL", rows[0].Direction)
	assert.Equal(t, "BUY", rows[1].Direction)
	assert.Equal(t, ts, rows[0].BlockTime)
	assert.Equal(t, "jupiter", rows[0].Protocol)
	assert.True(t, rows[0].BaseAmount.Equal(decimal.RequireFromString("500")))
	assert.True(t, rows[0].IntermediateAssetsCollapsed)
}

func TestNewEraseRecord(t *testing.T) {
	ts := time.Unix(1700000100, 0).UTC()
	row := NewEraseRecord(3, ts, classifier.EraseResult{
		Signature: "sig-erased",
		Reason:    classifier.EraseNoSwapper,
		DebugInfo: "owners with nonzero deltas: []",
	})

	assert.Equal(t, uint(3), row.WalletID)
	assert.Equal(t, "sig-erased", row.Signature)
	assert.Equal(t, ts, row.BlockTime)
	assert.Equal(t, "no_swapper", row.Reason)
	assert.NotEmpty(t, row.DebugInfo)
}
