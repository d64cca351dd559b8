package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
)

// ErrNotFound is returned when a catalog record does not exist.
var ErrNotFound = errors.New("catalog record not found")

// Repository provides read-only catalog lookups. Products and modifiers are
// returned regardless of their active flag; callers decide what inactive means.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *Repository) GetModifier(ctx context.Context, id int64) (*models.Modifier, error) {
	var modifier models.Modifier
	if err := r.db.WithContext(ctx).First(&modifier, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &modifier, nil
}

// GetAddonAssignments lists the addon modifiers a product may carry.
func (r *Repository) GetAddonAssignments(ctx context.Context, productID int64) ([]models.AddonAssignment, error) {
	var rows []models.AddonAssignment
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("modifier_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// HasBaseAssignment reports whether the product is usable as a base for the
// builder, either through a global assignment or one scoped to builderID.
func (r *Repository) HasBaseAssignment(ctx context.Context, productID, builderID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BaseAssignment{}).
		Where("product_id = ? AND (builder_id IS NULL OR builder_id = ?)", productID, builderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
