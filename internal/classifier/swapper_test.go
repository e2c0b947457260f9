package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testFeePayer = "9yQ5mJvEhKNGVAnxojmbmkSrvbA13r2vCRWmAkdBFLPT"
	testSigner   = "3nvAFEnFJFrYhuMbNh7swvBBcwDk2QXw4i4cCG2AGKXa"
	testOwner    = "FvYdrRGiwaMvMz2yaNv4vWEnAsVjoVDTe2uLmxgVSGSe"
)

func testRegistry(opts ...RegistryOption) *Registry {
	base := []RegistryOption{WithDerivedAddressPredicate(NoDerivedAddressDetection)}
	return NewRegistry(append(base, opts...)...)
}

func TestEscalationIdentifier_FeePayer(t *testing.T) {
	identifier := NewEscalationIdentifier(testRegistry())

	changes := []BalanceChange{
		{Mint: testTokenA, Owner: testFeePayer, Amount: dec("100"), Decimals: 6},
	}

	result := identifier.Identify(testFeePayer, []string{testFeePayer}, changes)

	assert.Equal(t, testFeePayer, result.Swapper)
	assert.Equal(t, ConfidenceHigh, result.Confidence)
	assert.Equal(t, MethodFeePayer, result.Method)
}

func TestEscalationIdentifier_SignerFallback(t *testing.T) {
	identifier := NewEscalationIdentifier(testRegistry())

	// Fee payer has no delta (sponsored transaction); the primary signer
	// does.
	changes := []BalanceChange{
		{Mint: testTokenA, Owner: testSigner, Amount: dec("-42"), Decimals: 6},
	}

	result := identifier.Identify(testFeePayer, []string{testSigner}, changes)

	assert.Equal(t, testSigner, result.Swapper)
	assert.Equal(t, ConfidenceMedium, result.Confidence)
	assert.Equal(t, MethodSigner, result.Method)
}

func TestEscalationIdentifier_OwnerAnalysis(t *testing.T) {
	identifier := NewEscalationIdentifier(testRegistry())

	// Neither fee payer nor signer moved anything; a single non-excluded
	// owner did.
	changes := []BalanceChange{
		{Mint: testTokenA, Owner: testOwner, Amount: dec("7"), Decimals: 6},
		{Mint: testTokenA, Owner: testPool, Amount: dec("-7"), Decimals: 6},
	}

	result := identifier.Identify(testFeePayer, []string{testFeePayer}, changes)

	assert.Equal(t, testOwner, result.Swapper)
	assert.Equal(t, ConfidenceLow, result.Confidence)
	assert.Equal(t, MethodOwnerAnalysis, result.Method)
}

func TestEscalationIdentifier_Erase(t *testing.T) {
	identifier := NewEscalationIdentifier(testRegistry())

	t.Run("no candidates", func(t *testing.T) {
		changes := []BalanceChange{
			{Mint: testTokenA, Owner: testPool, Amount: dec("-7"), Decimals: 6},
		}

		result := identifier.Identify(testFeePayer, []string{testFeePayer}, changes)

		require.False(t, result.Resolved())
		assert.Equal(t, MethodErase, result.Method)
		assert.Equal(t, EraseNoSwapper, result.EraseReason)
	})

	t.Run("multiple candidates", func(t *testing.T) {
		changes := []BalanceChange{
			{Mint: testTokenA, Owner: testOwner, Amount: dec("7"), Decimals: 6},
			{Mint: testTokenB, Owner: testSigner, Amount: dec("-3"), Decimals: 6},
		}

		result := identifier.Identify(testFeePayer, nil, changes)

		require.False(t, result.Resolved())
		assert.Equal(t, EraseMultipleCandidates, result.EraseReason)
	})
}

func TestEscalationIdentifier_DerivedAddressExcluded(t *testing.T) {
	derived := testOwner
	registry := testRegistry(WithDerivedAddressPredicate(func(addr string) bool {
		return addr == derived
	}))
	identifier := NewEscalationIdentifier(registry)

	changes := []BalanceChange{
		{Mint: testTokenA, Owner: derived, Amount: dec("7"), Decimals: 6},
		{Mint: testTokenA, Owner: testSigner, Amount: dec("-7"), Decimals: 6},
	}

	result := identifier.Identify(testFeePayer, nil, changes)

	assert.Equal(t, testSigner, result.Swapper)
	assert.Equal(t, MethodOwnerAnalysis, result.Method)
}

func TestLargestDeltaIdentifier_LargestMover(t *testing.T) {
	identifier := NewLargestDeltaIdentifier(testRegistry())

	changes := []BalanceChange{
		{Mint: testTokenA, Owner: testOwner, Amount: dec("-500"), Decimals: 6},
		{Mint: WrappedSOLMint, Owner: testOwner, Amount: dec("2.5"), Decimals: 9},
		{Mint: WrappedSOLMint, Owner: testSigner, Amount: dec("0.1"), Decimals: 9},
	}

	result := identifier.Identify(testFeePayer, nil, changes)

	assert.Equal(t, testOwner, result.Swapper)
	assert.Equal(t, ConfidenceHigh, result.Confidence)
	assert.Equal(t, MethodLargestDelta, result.Method)
}

func TestLargestDeltaIdentifier_PoolNeverWins(t *testing.T) {
	identifier := NewLargestDeltaIdentifier(testRegistry())

	// The pool moves more raw volume than the trader but is excluded from
	// candidacy.
	changes := []BalanceChange{
		{Mint: testTokenA, Owner: testPool, Amount: dec("100000"), Decimals: 6},
		{Mint: testTokenA, Owner: testOwner, Amount: dec("-500"), Decimals: 6},
	}

	result := identifier.Identify(testFeePayer, nil, changes)

	assert.Equal(t, testOwner, result.Swapper)
}

func TestLargestDeltaIdentifier_TieBreakNonCore(t *testing.T) {
	identifier := NewLargestDeltaIdentifier(testRegistry())

	changes := []BalanceChange{
		{Mint: testTokenA, Owner: testOwner, Amount: dec("10"), Decimals: 6},
		{Mint: WrappedSOLMint, Owner: testSigner, Amount: dec("-10"), Decimals: 9},
	}

	result := identifier.Identify(testFeePayer, nil, changes)

	assert.Equal(t, testOwner, result.Swapper)
	assert.Equal(t, ConfidenceMedium, result.Confidence)
	assert.Equal(t, MethodLargestDelta, result.Method)
}

func TestLargestDeltaIdentifier_FeePayerFallback(t *testing.T) {
	identifier := NewLargestDeltaIdentifier(testRegistry())

	// Two owners tied with non-core deltas; the fee payer has its own
	// nonzero delta to fall back on.
	changes := []BalanceChange{
		{Mint: testTokenA, Owner: testOwner, Amount: dec("10"), Decimals: 6},
		{Mint: testTokenB, Owner: testSigner, Amount: dec("-10"), Decimals: 6},
		{Mint: WrappedSOLMint, Owner: testFeePayer, Amount: dec("-0.5"), Decimals: 9},
	}

	// The fee payer itself is tied below the top movers, so exclude it from
	// winning outright by keeping its total smaller.
	result := identifier.Identify(testFeePayer, nil, changes)

	assert.Equal(t, testFeePayer, result.Swapper)
	assert.Equal(t, ConfidenceLow, result.Confidence)
	assert.Equal(t, MethodFeePayer, result.Method)
}

func TestLargestDeltaIdentifier_Erase(t *testing.T) {
	identifier := NewLargestDeltaIdentifier(testRegistry())

	t.Run("no candidates", func(t *testing.T) {
		result := identifier.Identify(testFeePayer, nil, nil)
		require.False(t, result.Resolved())
		assert.Equal(t, EraseNoSwapper, result.EraseReason)
	})

	t.Run("unresolvable tie", func(t *testing.T) {
		changes := []BalanceChange{
			{Mint: testTokenA, Owner: testOwner, Amount: dec("10"), Decimals: 6},
			{Mint: testTokenB, Owner: testSigner, Amount: dec("-10"), Decimals: 6},
		}

		result := identifier.Identify(testFeePayer, nil, changes)

		require.False(t, result.Resolved())
		assert.Equal(t, EraseMultipleCandidates, result.EraseReason)
	})
}

func TestNewIdentifier(t *testing.T) {
	registry := testRegistry()

	identifier, err := NewIdentifier("", registry)
	require.NoError(t, err)
	assert.IsType(t, &EscalationIdentifier{}, identifier)

	identifier, err = NewIdentifier("largest_delta", registry)
	require.NoError(t, err)
	assert.IsType(t, &LargestDeltaIdentifier{}, identifier)

	_, err = NewIdentifier("majority_vote", registry)
	assert.Error(t, err)
}
