package database

import (
	"fmt"
	"time"

	"github.com/wnt/swaplens/internal/classifier"
	"github.com/wnt/swaplens/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps the classified-swap persistence operations. All writes are
// conflict-tolerant so that reclassifying a wallet is a no-op for rows that
// already exist.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over an open database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetOrCreateWallet returns the wallet row for an address, creating it on
// first sight.
func (s *Store) GetOrCreateWallet(address string) (models.Wallet, error) {
	wallet := models.Wallet{Address: address}
	err := s.db.Where(models.Wallet{Address: address}).FirstOrCreate(&wallet).Error
	if err != nil {
		return wallet, fmt.Errorf("get or create wallet %s: %w", address, err)
	}
	return wallet, nil
}

// SaveResult persists one classification outcome for a wallet: either the
// swap legs or the erase record, mirroring the pipeline's own exclusivity.
func (s *Store) SaveResult(walletID uint, blockTime time.Time, result classifier.Result) error {
	if result.Erased() {
		return s.saveErase(walletID, blockTime, *result.Erase)
	}
	return s.saveSwaps(walletID, result.Swaps)
}

func (s *Store) saveSwaps(walletID uint, swaps []classifier.ParsedSwap) error {
	if len(swaps) == 0 {
		return nil
	}

	rows := models.NewParsedSwaps(walletID, swaps)
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("save %d swaps for %s: %w", len(rows), swaps[0].Signature, err)
	}
	return nil
}

func (s *Store) saveErase(walletID uint, blockTime time.Time, erase classifier.EraseResult) error {
	row := models.NewEraseRecord(walletID, blockTime, erase)
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save erase for %s: %w", erase.Signature, err)
	}
	return nil
}

// HasSignature reports whether a signature was already classified, either as
// a swap or an erase. Used to short-circuit reprocessing during backfills.
func (s *Store) HasSignature(signature string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ParsedSwap{}).Where("signature = ?", signature).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check swap signature %s: %w", signature, err)
	}
	if count > 0 {
		return true, nil
	}

	err = s.db.Model(&models.EraseRecord{}).Where("signature = ?", signature).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check erase signature %s: %w", signature, err)
	}
	return count > 0, nil
}

// UpdateWalletStats bumps the wallet's counters after a classification run.
func (s *Store) UpdateWalletStats(walletID uint, transactions, swaps, erases int, oldest, newest time.Time) error {
	updates := map[string]interface{}{
		"transaction_count": gorm.Expr("transaction_count + ?", transactions),
		"swap_count":        gorm.Expr("swap_count + ?", swaps),
		"erase_count":       gorm.Expr("erase_count + ?", erases),
		"last_classified":   time.Now().UTC(),
	}
	if !newest.IsZero() {
		updates["last_transaction_at"] = newest
	}
	if !oldest.IsZero() {
		updates["first_transaction_at"] = oldest
	}

	err := s.db.Model(&models.Wallet{}).Where("id = ?", walletID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update wallet %d stats: %w", walletID, err)
	}
	return nil
}
