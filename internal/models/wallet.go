package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet represents a tracked Solana wallet whose history gets classified.
type Wallet struct {
	gorm.Model
	Address            string    `gorm:"size:44;uniqueIndex;not null"`
	FirstTransactionAt time.Time `gorm:"index"`
	LastTransactionAt  time.Time `gorm:"index"`
	TransactionCount   int       `gorm:"default:0"`
	SwapCount          int       `gorm:"default:0"`
	EraseCount         int       `gorm:"default:0"`
	LastClassified     time.Time

	// Relationships
	Swaps  []ParsedSwap  `gorm:"foreignKey:WalletID"`
	Erases []EraseRecord `gorm:"foreignKey:WalletID"`
}
