package ingest

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wnt/swaplens/internal/classifier"
	"github.com/wnt/swaplens/internal/indexer"
)

const nativeDecimals = 9

// Convert maps one enriched provider transaction onto the classifier's
// input model. Account-level balance changes and itemized transfers are both
// carried over when present; the classifier decides which to trust.
// Malformed token records are skipped rather than failing the whole
// transaction.
func Convert(tx indexer.Transaction) classifier.Transaction {
	out := classifier.Transaction{
		Signature: tx.Signature,
		Timestamp: normalizeTimestamp(tx.Timestamp),
		FeePayer:  tx.FeePayer,
		Signers:   tx.Signers,
	}

	if len(out.Signers) == 0 && tx.FeePayer != "" {
		out.Signers = []string{tx.FeePayer}
	}

	for _, account := range tx.AccountData {
		if account.NativeBalanceChange != 0 {
			out.Changes = append(out.Changes, classifier.BalanceChange{
				Mint:     classifier.WrappedSOLMint,
				Owner:    account.Account,
				Amount:   decimal.NewFromInt(account.NativeBalanceChange).Shift(-nativeDecimals),
				Decimals: nativeDecimals,
			})
		}

		for _, change := range account.TokenBalanceChanges {
			if change.Mint == "" || change.RawTokenAmount.TokenAmount == "" {
				continue
			}
			amount, err := decimal.NewFromString(change.RawTokenAmount.TokenAmount)
			if err != nil {
				continue
			}
			owner := change.UserAccount
			if owner == "" {
				owner = account.Account
			}
			out.Changes = append(out.Changes, classifier.BalanceChange{
				Mint:     change.Mint,
				Owner:    owner,
				Amount:   amount.Shift(-change.RawTokenAmount.Decimals),
				Decimals: change.RawTokenAmount.Decimals,
			})
		}
	}

	for _, transfer := range tx.NativeTransfers {
		if transfer.Amount == 0 {
			continue
		}
		out.Transfers = append(out.Transfers, classifier.Transfer{
			Mint:      classifier.WrappedSOLMint,
			FromOwner: transfer.FromUserAccount,
			ToOwner:   transfer.ToUserAccount,
			Amount:    decimal.NewFromInt(transfer.Amount).Shift(-nativeDecimals),
			Decimals:  nativeDecimals,
		})
	}

	for _, transfer := range tx.TokenTransfers {
		if transfer.Mint == "" || transfer.TokenAmount == 0 {
			continue
		}
		out.Transfers = append(out.Transfers, classifier.Transfer{
			Mint:      transfer.Mint,
			FromOwner: transfer.FromUserAccount,
			ToOwner:   transfer.ToUserAccount,
			Amount:    decimal.NewFromFloat(transfer.TokenAmount),
			Decimals:  transfer.Decimals,
		})
	}

	return out
}

// normalizeTimestamp accepts both second and millisecond epochs; some
// providers switched precision between API versions.
func normalizeTimestamp(ts int64) time.Time {
	if ts > 1e12 {
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}
