package catalog

import (
	"context"
	"fmt"
	"testing"

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
	require.NoError(t, migrate.AutoMigrateModels(conn))
	return conn
}

func TestRepositoryGetProductAndModifier(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)

	product := &models.Product{
		Kind:      enums.ProductKindRegular,
		IsActive:  false,
		BasePrice: decimal.RequireFromString("15.00"),
		Name:      types.LocalizedText{"en": "Lemonade"},
	}
	require.NoError(t, db.Create(product).Error)
	maxLevel := 3
	modifier := &models.Modifier{
		Type:     enums.ModifierTypeSweetness,
		IsActive: true,
		Price:    decimal.RequireFromString("1.50"),
		MaxLevel: &maxLevel,
		Name:     types.LocalizedText{"en": "Sweet"},
	}
	require.NoError(t, db.Create(modifier).Error)

	got, err := repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive, "inactive products are still returned")
	require.Equal(t, "15.00", got.BasePrice.StringFixed(2))

	gotMod, err := repo.GetModifier(ctx, modifier.ID)
	require.NoError(t, err)
	require.NotNil(t, gotMod.MaxLevel)
	require.Equal(t, 3, *gotMod.MaxLevel)

	_, err = repo.GetProduct(ctx, product.ID+100)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetModifier(ctx, modifier.ID+100)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryHasBaseAssignment(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)

	scoped := &models.Product{Kind: enums.ProductKindMixBase, IsActive: true, BasePrice: decimal.RequireFromString("12.00"), Name: types.LocalizedText{"en": "Scoped"}}
	global := &models.Product{Kind: enums.ProductKindMixBase, IsActive: true, BasePrice: decimal.RequireFromString("10.00"), Name: types.LocalizedText{"en": "Global"}}
	unassigned := &models.Product{Kind: enums.ProductKindMixBase, IsActive: true, BasePrice: decimal.RequireFromString("9.00"), Name: types.LocalizedText{"en": "Nowhere"}}
	require.NoError(t, db.Create(scoped).Error)
	require.NoError(t, db.Create(global).Error)
	require.NoError(t, db.Create(unassigned).Error)

	builder := int64(5)
	require.NoError(t, db.Create(&models.BaseAssignment{ProductID: scoped.ID, BuilderID: &builder}).Error)
	require.NoError(t, db.Create(&models.BaseAssignment{ProductID: global.ID}).Error)

	cases := []struct {
		name      string
		productID int64
		builderID int64
		want      bool
	}{
		{name: "scoped match", productID: scoped.ID, builderID: 5, want: true},
		{name: "scoped mismatch", productID: scoped.ID, builderID: 7, want: false},
		{name: "global any builder", productID: global.ID, builderID: 7, want: true},
		{name: "no assignment", productID: unassigned.ID, builderID: 5, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := repo.HasBaseAssignment(ctx, tc.productID, tc.builderID)
			require.NoError(t, err)
			require.Equal(t, tc.want, ok)
		})
	}
}

func TestRepositoryGetAddonAssignments(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db)

	product := &models.Product{Kind: enums.ProductKindRegular, IsActive: true, BasePrice: decimal.RequireFromString("15.00"), Name: types.LocalizedText{"en": "Soda"}}
	require.NoError(t, db.Create(product).Error)
	minSel, maxSel := 1, 2
	require.NoError(t, db.Create(&models.AddonAssignment{ProductID: product.ID, ModifierID: 9, MinSelect: &minSel, MaxSelect: &maxSel}).Error)
	require.NoError(t, db.Create(&models.AddonAssignment{ProductID: product.ID, ModifierID: 4, Required: true}).Error)
	require.NoError(t, db.Create(&models.AddonAssignment{ProductID: product.ID + 1, ModifierID: 4}).Error)

	rows, err := repo.GetAddonAssignments(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(4), rows[0].ModifierID)
	require.True(t, rows[0].Required)
	require.Equal(t, int64(9), rows[1].ModifierID)
	require.Equal(t, 2, *rows[1].MaxSelect)

	none, err := repo.GetAddonAssignments(ctx, product.ID+50)
	require.NoError(t, err)
	require.Empty(t, none)
}
