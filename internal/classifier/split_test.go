package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDetector_SimplePair(t *testing.T) {
	detector := NewSplitDetector(testRegistry())

	deltas := map[string]AssetDelta{
		WrappedSOLMint: {Mint: WrappedSOLMint, Delta: dec("-2.5"), GrossOut: dec("2.5")},
		testTokenA:     {Mint: testTokenA, Delta: dec("1000"), GrossIn: dec("1000")},
	}

	detection, err := detector.Detect(deltas)
	require.NoError(t, err)

	assert.False(t, detection.SplitRequired)
	assert.Equal(t, WrappedSOLMint, detection.Entry.Mint)
	assert.Equal(t, testTokenA, detection.Exit.Mint)
}

func TestSplitDetector_NoTradableAssets(t *testing.T) {
	detector := NewSplitDetector(testRegistry())

	deltas := map[string]AssetDelta{
		WrappedSOLMint: {Mint: WrappedSOLMint, Delta: dec("0"), IsIntermediate: true},
	}

	_, err := detector.Detect(deltas)
	assert.ErrorIs(t, err, ErrNoTradableAssets)
}

func TestSplitDetector_OneSidedFlow(t *testing.T) {
	detector := NewSplitDetector(testRegistry())

	t.Run("only inflows", func(t *testing.T) {
		deltas := map[string]AssetDelta{
			testTokenA: {Mint: testTokenA, Delta: dec("10"), GrossIn: dec("10")},
			testTokenB: {Mint: testTokenB, Delta: dec("5"), GrossIn: dec("5")},
		}
		_, err := detector.Detect(deltas)
		assert.ErrorIs(t, err, ErrOneSidedFlow)
	})

	t.Run("only outflows", func(t *testing.T) {
		deltas := map[string]AssetDelta{
			testTokenA: {Mint: testTokenA, Delta: dec("-10"), GrossOut: dec("10")},
		}
		_, err := detector.Detect(deltas)
		assert.ErrorIs(t, err, ErrOneSidedFlow)
	})
}

func TestSplitDetector_SignificantIntermediate(t *testing.T) {
	detector := NewSplitDetector(testRegistry())

	deltas := map[string]AssetDelta{
		testTokenA: {Mint: testTokenA, Delta: dec("-500"), GrossOut: dec("500")},
		WrappedSOLMint: {
			Mint: WrappedSOLMint, Symbol: "SOL", Delta: dec("0"),
			GrossIn: dec("10"), GrossOut: dec("10"), IsIntermediate: true,
		},
		testTokenB: {Mint: testTokenB, Delta: dec("300"), GrossIn: dec("300")},
	}

	detection, err := detector.Detect(deltas)
	require.NoError(t, err)

	assert.True(t, detection.SplitRequired)
	require.NotNil(t, detection.Intermediate)
	assert.Equal(t, WrappedSOLMint, detection.Intermediate.Mint)
	assert.Equal(t, testTokenA, detection.Entry.Mint)
	assert.Equal(t, testTokenB, detection.Exit.Mint)
	assert.Contains(t, detection.SplitReason, "SOL")
}

func TestSplitDetector_DustIntermediateDoesNotSplit(t *testing.T) {
	detector := NewSplitDetector(testRegistry())

	// The rounding crumbs on an intermediate below the significance
	// threshold are not a routed leg.
	deltas := map[string]AssetDelta{
		testTokenA: {Mint: testTokenA, Delta: dec("-500"), GrossOut: dec("500")},
		WrappedSOLMint: {
			Mint: WrappedSOLMint, Delta: dec("0"),
			GrossIn: dec("0.0001"), GrossOut: dec("0.0001"), IsIntermediate: true,
		},
		testTokenB: {Mint: testTokenB, Delta: dec("300"), GrossIn: dec("300")},
	}

	detection, err := detector.Detect(deltas)
	require.NoError(t, err)
	assert.False(t, detection.SplitRequired)
	assert.Nil(t, detection.Intermediate)
}

func TestSplitDetector_PicksExtremes(t *testing.T) {
	detector := NewSplitDetector(testRegistry())

	deltas := map[string]AssetDelta{
		testTokenA:     {Mint: testTokenA, Delta: dec("-500")},
		testTokenB:     {Mint: testTokenB, Delta: dec("-2")},
		WrappedSOLMint: {Mint: WrappedSOLMint, Delta: dec("0.3")},
		USDCMint:       {Mint: USDCMint, Delta: dec("70")},
	}

	detection, err := detector.Detect(deltas)
	require.NoError(t, err)

	assert.Equal(t, testTokenA, detection.Entry.Mint)
	assert.Equal(t, USDCMint, detection.Exit.Mint)
}
