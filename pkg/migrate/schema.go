package migrate

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
)

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.Product{},
		&models.Modifier{},
		&models.BaseAssignment{},
		&models.AddonAssignment{},
		&models.PromoCode{},
		&models.PromoUsage{},
		&models.Cart{},
		&models.CartItem{},
	}
}

// Partial indexes gorm tags cannot express. They mirror the cart migration so
// the one-active-cart rule holds on SQLite too.
var partialIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS uq_carts_active_customer ON carts (customer_id, store_id) WHERE abandoned_at IS NULL AND customer_id IS NOT NULL",
	"CREATE UNIQUE INDEX IF NOT EXISTS uq_carts_active_session ON carts (session_id, store_id) WHERE abandoned_at IS NULL AND session_id IS NOT NULL",
	"CREATE INDEX IF NOT EXISTS idx_carts_stale_active ON carts (updated_at) WHERE abandoned_at IS NULL",
}

// AutoMigrateModels builds the schema from the gorm models. It backs local
// SQLite runs and repository tests; Postgres always goes through goose.
func AutoMigrateModels(conn *gorm.DB) error {
	if err := conn.AutoMigrate(Models()...); err != nil {
		return err
	}
	for _, stmt := range partialIndexes {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}
