package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionClassifier(t *testing.T) {
	classifier := NewDirectionClassifier(testRegistry())

	tests := []struct {
		name      string
		entryMint string
		exitMint  string
		want      Direction
	}{
		{"buy token with SOL", WrappedSOLMint, testTokenA, DirectionBuy},
		{"buy token with USDC", USDCMint, testTokenA, DirectionBuy},
		{"sell token for SOL", testTokenA, WrappedSOLMint, DirectionSell},
		{"sell token for USDT", testTokenA, USDTMint, DirectionSell},
		{"priority to priority", WrappedSOLMint, USDCMint, DirectionBuy},
		{"token to token", testTokenA, testTokenB, DirectionBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := AssetDelta{Mint: tt.entryMint, Delta: dec("-1")}
			exit := AssetDelta{Mint: tt.exitMint, Delta: dec("1")}
			assert.Equal(t, tt.want, classifier.Classify(entry, exit))
		})
	}
}

func TestAmountNormalizer(t *testing.T) {
	var normalizer AmountNormalizer

	entry := AssetDelta{Mint: WrappedSOLMint, Delta: dec("-2.5")}
	exit := AssetDelta{Mint: testTokenA, Delta: dec("1000")}

	buy := normalizer.Normalize(entry, exit, DirectionBuy)
	assert.True(t, buy.Base.Equal(dec("1000")))
	assert.True(t, buy.Quote.Equal(dec("2.5")))

	sell := normalizer.Normalize(entry, exit, DirectionSell)
	assert.True(t, sell.Base.Equal(dec("2.5")))
	assert.True(t, sell.Quote.Equal(dec("1000")))
}

// Normalizing the same pair under BUY and SELL must produce mirrored
// amounts: base and quote swap, magnitudes stay identical.
func TestAmountNormalizer_MirrorProperty(t *testing.T) {
	var normalizer AmountNormalizer

	pairs := []struct {
		entry, exit string
	}{
		{"-2.5", "1000"},
		{"-0.000001", "0.000002"},
		{"-123456789.123456789", "1"},
	}

	for _, p := range pairs {
		entry := AssetDelta{Mint: testTokenA, Delta: dec(p.entry)}
		exit := AssetDelta{Mint: testTokenB, Delta: dec(p.exit)}

		buy := normalizer.Normalize(entry, exit, DirectionBuy)
		sell := normalizer.Normalize(entry, exit, DirectionSell)

		assert.True(t, buy.Base.Equal(sell.Quote))
		assert.True(t, buy.Quote.Equal(sell.Base))
	}
}
