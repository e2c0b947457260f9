package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wnt/swaplens/internal/classifier"
	"gorm.io/gorm"
)

// ParsedSwap is one persisted swap leg. A transaction produces one row for a
// direct swap and two (leg 0 and 1) for a split token-to-token swap, so the
// natural key is (signature, leg).
type ParsedSwap struct {
	gorm.Model
	Signature string `gorm:"size:88;not null;uniqueIndex:idx_parsed_swaps_signature_leg,priority:1"`
	Leg       int    `gorm:"not null;uniqueIndex:idx_parsed_swaps_signature_leg,priority:2"`
	WalletID  uint   `gorm:"index;not null"`

	Swapper    string    `gorm:"size:44;index;not null"`
	BlockTime  time.Time `gorm:"index"`
	Direction  string    `gorm:"size:4;index;not null"`
	Confidence string    `gorm:"size:10;not null"`
	Method     string    `gorm:"size:20;not null"`
	Protocol   string    `gorm:"size:30;index"`

	BaseMint      string          `gorm:"size:44;index;not null"`
	BaseSymbol    string          `gorm:"size:20"`
	BaseDecimals  int32           `gorm:"not null"`
	BaseAmount    decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	QuoteMint     string          `gorm:"size:44;index;not null"`
	QuoteSymbol   string          `gorm:"size:20"`
	QuoteDecimals int32           `gorm:"not null"`
	QuoteAmount   decimal.Decimal `gorm:"type:numeric(38,18);not null"`

	RentRefundsFiltered         bool
	IntermediateAssetsCollapsed bool

	// Relationships
	Wallet Wallet `gorm:"foreignKey:WalletID"`
}

// EraseRecord is one persisted rejection: a transaction that passed through
// classification and was ruled out as a swap. Keeping these makes reruns
// cheap and the ruling auditable.
type EraseRecord struct {
	gorm.Model
	Signature string    `gorm:"size:88;uniqueIndex;not null"`
	WalletID  uint      `gorm:"index;not null"`
	BlockTime time.Time `gorm:"index"`
	Reason    string    `gorm:"size:30;index;not null"`
	DebugInfo string    `gorm:"type:text"`

	// Relationships
	Wallet Wallet `gorm:"foreignKey:WalletID"`
}

// NewParsedSwaps converts a classification result's swap legs into rows for
// the given wallet.
func NewParsedSwaps(walletID uint, swaps []classifier.ParsedSwap) []ParsedSwap {
	rows := make([]ParsedSwap, 0, len(swaps))
	for leg, swap := range swaps {
		rows = append(rows, ParsedSwap{
			Signature:                   swap.Signature,
			Leg:                         leg,
			WalletID:                    walletID,
			Swapper:                     swap.Swapper,
			BlockTime:                   swap.Timestamp,
			Direction:                   string(swap.Direction),
			Confidence:                  string(swap.Confidence),
			Method:                      swap.Method,
			Protocol:                    swap.Protocol,
			BaseMint:                    swap.BaseMint,
			BaseSymbol:                  swap.BaseSymbol,
			BaseDecimals:                swap.BaseDecimals,
			BaseAmount:                  swap.BaseAmount,
			QuoteMint:                   swap.QuoteMint,
			QuoteSymbol:                 swap.QuoteSymbol,
			QuoteDecimals:               swap.QuoteDecimals,
			QuoteAmount:                 swap.QuoteAmount,
			RentRefundsFiltered:         swap.RentRefundsFiltered,
			IntermediateAssetsCollapsed: swap.IntermediateAssetsCollapsed,
		})
	}
	return rows
}

// NewEraseRecord converts an erase outcome into a row for the given wallet.
func NewEraseRecord(walletID uint, blockTime time.Time, erase classifier.EraseResult) EraseRecord {
	return EraseRecord{
		Signature: erase.Signature,
		WalletID:  walletID,
		BlockTime: blockTime,
		Reason:    string(erase.Reason),
		DebugInfo: erase.DebugInfo,
	}
}
