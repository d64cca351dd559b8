package promos

import (
	"context"
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
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrateModels(conn))
	return conn
}

func seedPromo(t *testing.T, db *gorm.DB, code string, usageLimit *int) *models.PromoCode {
	t.Helper()
	promo := &models.PromoCode{
		ID:                 uuid.New(),
		Code:               code,
		DiscountType:       enums.DiscountTypeFixed,
		DiscountValue:      decimal.RequireFromString("5.00"),
		ValidFrom:          time.Now().Add(-time.Hour).UTC(),
		ValidTo:            time.Now().Add(time.Hour).UTC(),
		IsActive:           true,
		UsageLimit:         usageLimit,
		MinimumOrderAmount: decimal.Zero,
	}
	require.NoError(t, db.Create(promo).Error)
	return promo
}

func TestRepositoryFindByCodeIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)
	promo := seedPromo(t, db, "Welcome5", nil)

	got, err := repo.FindByCode(ctx, "  WELCOME5 ")
	require.NoError(t, err)
	require.Equal(t, promo.ID, got.ID)
	require.Equal(t, "5.00", got.DiscountValue.StringFixed(2))

	_, err = repo.FindByCode(ctx, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryRedeemRespectsUsageLimit(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)
	limit := 2
	promo := seedPromo(t, db, "TWICE", &limit)
	customer := uuid.New()

	for i := 0; i < 2; i++ {
		usage, err := repo.Redeem(ctx, promo.ID, customer, nil)
		require.NoError(t, err)
		require.Equal(t, promo.ID, usage.PromoCodeID)
	}

	_, err := repo.Redeem(ctx, promo.ID, customer, nil)
	require.ErrorIs(t, err, ErrUsageLimitReached)

	reloaded, err := repo.FindByID(ctx, promo.ID)
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.UsedCount)

	count, err := repo.CountUsagesByCustomer(ctx, promo.ID, customer)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	other, err := repo.CountUsagesByCustomer(ctx, promo.ID, uuid.New())
	require.NoError(t, err)
	require.Zero(t, other)

	_, err = repo.Redeem(ctx, uuid.New(), customer, nil)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryRedeemUnlimited(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)
	promo := seedPromo(t, db, "OPEN", nil)
	orderID := uuid.New()

	usage, err := repo.Redeem(ctx, promo.ID, uuid.New(), &orderID)
	require.NoError(t, err)
	require.NotNil(t, usage.OrderID)

	reloaded, err := repo.FindByID(ctx, promo.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.UsedCount)
}
