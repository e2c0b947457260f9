package database

import (
	"fmt"
	"time"

	"github.com/wnt/swaplens/internal/config"
	"github.com/wnt/swaplens/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the postgres database and migrates the schema.
func Connect(cfg config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Silent),
		PrepareStmt: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrateSchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

func migrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Wallet{},
		&models.ParsedSwap{},
		&models.EraseRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Composite indexes for common query patterns
	db.Exec("CREATE INDEX IF NOT EXISTS idx_parsed_swaps_wallet_blocktime ON parsed_swaps(wallet_id, block_time)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_parsed_swaps_swapper_direction ON parsed_swaps(swapper, direction)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_parsed_swaps_base_mint_blocktime ON parsed_swaps(base_mint, block_time)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_erase_records_wallet_reason ON erase_records(wallet_id, reason)")

	return nil
}
