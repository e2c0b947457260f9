package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wnt/swaplens/internal/classifier"
	"github.com/wnt/swaplens/internal/indexer"
)

const (
	testWallet = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	testPool   = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"
	testMint   = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

func TestConvert_BalanceChanges(t *testing.T) {
	tx := indexer.Transaction{
		Signature: "sig-1",
		Timestamp: 1700000000,
		FeePayer:  testWallet,
		Signers:   []string{testWallet},
		AccountData: []indexer.AccountData{
			{
				Account:             testWallet,
				NativeBalanceChange: -2500000000,
				TokenBalanceChanges: []indexer.TokenBalanceChange{
					{
						UserAccount:    testWallet,
						Mint:           testMint,
						RawTokenAmount: indexer.RawTokenAmount{TokenAmount: "100000000", Decimals: 5},
					},
				},
			},
			{Account: testPool, NativeBalanceChange: 2500000000},
		},
	}

	converted := Convert(tx)

	assert.Equal(t, "sig-1", converted.Signature)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), converted.Timestamp)
	assert.Equal(t, testWallet, converted.FeePayer)
	require.Len(t, converted.Changes, 3)

	native := converted.Changes[0]
	assert.Equal(t, classifier.WrappedSOLMint, native.Mint)
	assert.Equal(t, testWallet, native.Owner)
	assert.True(t, native.Amount.Equal(decimal.RequireFromString("-2.5")))
	assert.Equal(t, int32(9), native.Decimals)

	token := converted.Changes[1]
	assert.Equal(t, testMint, token.Mint)
	assert.True(t, token.Amount.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, int32(5), token.Decimals)
}

func TestConvert_Transfers(t *testing.T) {
	tx := indexer.Transaction{
		Signature: "sig-2",
		Timestamp: 1700000000,
		FeePayer:  testWallet,
		NativeTransfers: []indexer.NativeTransfer{
			{FromUserAccount: testWallet, ToUserAccount: testPool, Amount: 2500000000},
		},
		TokenTransfers: []indexer.TokenTransfer{
			{FromUserAccount: testPool, ToUserAccount: testWallet, TokenAmount: 1000, Decimals: 5, Mint: testMint},
		},
	}

	converted := Convert(tx)
	require.Len(t, converted.Transfers, 2)

	native := converted.Transfers[0]
	assert.Equal(t, classifier.WrappedSOLMint, native.Mint)
	assert.Equal(t, testWallet, native.FromOwner)
	assert.Equal(t, testPool, native.ToOwner)
	assert.True(t, native.Amount.Equal(decimal.RequireFromString("2.5")))

	token := converted.Transfers[1]
	assert.Equal(t, testMint, token.Mint)
	assert.True(t, token.Amount.Equal(decimal.RequireFromString("1000")))
}

func TestConvert_SkipsMalformedRecords(t *testing.T) {
	tx := indexer.Transaction{
		Signature: "sig-3",
		FeePayer:  testWallet,
		AccountData: []indexer.AccountData{
			{
				Account: testWallet,
				TokenBalanceChanges: []indexer.TokenBalanceChange{
					{Mint: "", RawTokenAmount: indexer.RawTokenAmount{TokenAmount: "5"}},
					{Mint: testMint, RawTokenAmount: indexer.RawTokenAmount{TokenAmount: "not-a-number"}},
					{Mint: testMint, RawTokenAmount: indexer.RawTokenAmount{TokenAmount: ""}},
					{Mint: testMint, UserAccount: testWallet, RawTokenAmount: indexer.RawTokenAmount{TokenAmount: "42", Decimals: 0}},
				},
			},
		},
		TokenTransfers: []indexer.TokenTransfer{
			{Mint: "", TokenAmount: 1},
			{Mint: testMint, TokenAmount: 0},
		},
	}

	converted := Convert(tx)
	require.Len(t, converted.Changes, 1)
	assert.True(t, converted.Changes[0].Amount.Equal(decimal.RequireFromString("42")))
	assert.Empty(t, converted.Transfers)
}

func TestConvert_Defaults(t *testing.T) {
	t.Run("signers fall back to fee payer", func(t *testing.T) {
		converted := Convert(indexer.Transaction{FeePayer: testWallet})
		assert.Equal(t, []string{testWallet}, converted.Signers)
	})

	t.Run("millisecond timestamps", func(t *testing.T) {
		converted := Convert(indexer.Transaction{Timestamp: 1700000000123})
		assert.Equal(t, time.UnixMilli(1700000000123).UTC(), converted.Timestamp)
	})

	t.Run("token owner falls back to account", func(t *testing.T) {
		converted := Convert(indexer.Transaction{
			AccountData: []indexer.AccountData{{
				Account: testWallet,
				TokenBalanceChanges: []indexer.TokenBalanceChange{
					{Mint: testMint, RawTokenAmount: indexer.RawTokenAmount{TokenAmount: "10"}},
				},
			}},
		})
		require.Len(t, converted.Changes, 1)
		assert.Equal(t, testWallet, converted.Changes[0].Owner)
	})
}
