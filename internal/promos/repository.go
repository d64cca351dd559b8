package promos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
)

// ErrUsageLimitReached is returned by Redeem when the global cap is spent.
var ErrUsageLimitReached = errors.New("promo usage limit reached")

// Repository persists promo codes and their usages.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByCode looks a promo up case-insensitively.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).
		Where("lower(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// CountUsagesByCustomer counts past redemptions of the promo by the customer.
func (r *Repository) CountUsagesByCustomer(ctx context.Context, promoID, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PromoUsage{}).
		Where("promo_code_id = ? AND customer_id = ?", promoID, customerID).
		Count(&count).Error
	return count, err
}

// Redeem increments used_count only while it is below usage_limit and records
// the usage row, both in one transaction. It is meant for order creation; the
// cart never calls it.
func (r *Repository) Redeem(ctx context.Context, promoID, customerID uuid.UUID, orderID *uuid.UUID) (*models.PromoUsage, error) {
	var usage *models.PromoUsage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PromoCode{}).
			Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", promoID).
			UpdateColumn("used_count", gorm.Expr("used_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.PromoCode{}).Where("id = ?", promoID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrUsageLimitReached
		}

		usage = &models.PromoUsage{
			ID:          uuid.New(),
			PromoCodeID: promoID,
			CustomerID:  customerID,
			OrderID:     orderID,
		}
		return tx.Create(usage).Error
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}
