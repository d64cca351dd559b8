package cart

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	"github.com/angelmondragon/mixbar-backend/pkg/migrate"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.AutoMigrateModels(conn))
	return conn
}

func seedProduct(t *testing.T, db *gorm.DB, kind enums.ProductKind, price, name string) *models.Product {
	t.Helper()
	product := &models.Product{
		Kind:      kind,
		IsActive:  true,
		BasePrice: decimal.RequireFromString(price),
		Name:      types.LocalizedText{"en": name},
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedModifier(t *testing.T, db *gorm.DB, typ enums.ModifierType, price, name string) *models.Modifier {
	t.Helper()
	modifier := &models.Modifier{
		Type:     typ,
		IsActive: true,
		Price:    decimal.RequireFromString(price),
		Name:     types.LocalizedText{"en": name},
	}
	require.NoError(t, db.Create(modifier).Error)
	return modifier
}

func seedPromo(t *testing.T, db *gorm.DB, code string, typ enums.DiscountType, value, minimum string) *models.PromoCode {
	t.Helper()
	promo := &models.PromoCode{
		ID:                 uuid.New(),
		Code:               code,
		DiscountType:       typ,
		DiscountValue:      decimal.RequireFromString(value),
		ValidFrom:          time.Now().Add(-time.Hour).UTC(),
		ValidTo:            time.Now().Add(time.Hour).UTC(),
		IsActive:           true,
		MinimumOrderAmount: decimal.RequireFromString(minimum),
	}
	require.NoError(t, db.Create(promo).Error)
	return promo
}

func productSnapshot(productID int64, total string) types.ConfigurationSnapshot {
	return types.ConfigurationSnapshot{
		SchemaVersion: types.ConfigurationSchemaVersion,
		ItemType:      enums.CartItemTypeProduct,
		Product:       &types.ProductSnapshot{ProductID: productID},
		Total:         decimal.RequireFromString(total),
	}
}
