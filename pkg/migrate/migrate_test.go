package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	"github.com/angelmondragon/mixbar-backend/pkg/enums"
	"github.com/angelmondragon/mixbar-backend/pkg/types"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	require.NoError(t, ValidateFS(Migrations()))

	embedded, err := fs.Glob(Migrations(), "*.sql")
	require.NoError(t, err)
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	require.Len(t, embedded, len(onDisk))
}

func TestValidateFSRules(t *testing.T) {
	up := "-- +goose Up\nCREATE TABLE IF NOT EXISTS notes (id BIGINT);\n"
	cases := []struct {
		name    string
		files   fstest.MapFS
		wantErr string
	}{
		{
			name:  "valid",
			files: fstest.MapFS{"20260101000000_notes.sql": {Data: []byte(up + "-- +goose Down\nDROP TABLE IF EXISTS notes;\n")}},
		},
		{
			name:    "missing drop",
			files:   fstest.MapFS{"20260101000000_notes.sql": {Data: []byte(up + "-- +goose Down\n")}},
			wantErr: "does not drop notes",
		},
		{
			name:    "down before up",
			files:   fstest.MapFS{"20260101000000_notes.sql": {Data: []byte("-- +goose Down\n" + up)}},
			wantErr: "Down before Up",
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"20260101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
				"20260101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			},
			wantErr: "duplicate migration version",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFS(tc.files)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestCartMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_cart_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS carts",
		"CREATE TABLE IF NOT EXISTS cart_items",
		"CHECK ((customer_id IS NULL) <> (session_id IS NULL))",
		"WHERE abandoned_at IS NULL",
		"CHECK (quantity >= 1)",
		"FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS carts",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPromoAndCatalogMigrationsUseNumericMoney(t *testing.T) {
	promo := readMigration(t, "*_create_promo_tables.sql")
	catalog := readMigration(t, "*_create_catalog_tables.sql")

	require.Contains(t, promo, "discount_value NUMERIC(12,2)")
	require.Contains(t, promo, "CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_codes_code ON promo_codes (lower(code))")
	require.Contains(t, catalog, "base_price NUMERIC(12,2)")
	require.Contains(t, catalog, "price NUMERIC(12,2)")
	require.Contains(t, catalog, "CREATE TABLE IF NOT EXISTS addon_assignments")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Cart Notes!")
	require.NoError(t, err)
	require.Regexp(t, `\d{14}_add_cart_notes\.sql$`, filepath.Base(path))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "  !!  ")
	require.Error(t, err)
}

func TestNextVersionSkipsPastExisting(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301120000_a.sql"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301120059_b.sql"), nil, 0o644))

	v, err := nextVersion(dir, now)
	require.NoError(t, err)
	require.Equal(t, int64(20260301120100), v)

	v, err = nextVersion(dir, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(20260301130000), v)
}

func TestNewRunnerRequiresDB(t *testing.T) {
	_, err := NewRunner(nil, nil)
	require.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestAutoMigrateModelsSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, AutoMigrateModels(conn))

	product := models.Product{
		Kind:      enums.ProductKindMixBase,
		IsActive:  true,
		BasePrice: decimal.RequireFromString("12.00"),
		Name:      types.LocalizedText{"en": "Cola"},
	}
	require.NoError(t, conn.Create(&product).Error)
	require.NotZero(t, product.ID)

	var loaded models.Product
	require.NoError(t, conn.First(&loaded, product.ID).Error)
	require.True(t, loaded.BasePrice.Equal(decimal.RequireFromString("12")))
	require.Equal(t, "Cola", loaded.Name.Get("en"))
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", pattern)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}
