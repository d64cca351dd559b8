package promos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
)

// Rejection names the first rule a promo failed. Empty means eligible.
type Rejection string

const (
	RejectionNone               Rejection = ""
	RejectionInactive           Rejection = "inactive"
	RejectionNotStarted         Rejection = "not_started"
	RejectionExpired            Rejection = "expired"
	RejectionMinimumOrderNotMet Rejection = "minimum_order_not_met"
	RejectionCustomerLimit      Rejection = "customer_limit_reached"
	RejectionUsageLimit         Rejection = "usage_limit_reached"
)

// UsageCounter counts a customer's prior redemptions.
type UsageCounter interface {
	CountUsagesByCustomer(ctx context.Context, promoID, customerID uuid.UUID) (int64, error)
}

// Checker evaluates promo eligibility at a point in time.
type Checker struct {
	usages UsageCounter
	now    func() time.Time
}

// NewChecker builds a checker; now defaults to time.Now.
func NewChecker(usages UsageCounter, now func() time.Time) *Checker {
	if now == nil {
		now = time.Now
	}
	return &Checker{usages: usages, now: now}
}

// IsValidForCustomer reports whether the promo applies to an order of
// orderAmount by the customer. A nil customer (session-only cart) skips the
// per-customer limit. The global usage limit is not checked here.
func (c *Checker) IsValidForCustomer(ctx context.Context, promo *models.PromoCode, customerID *uuid.UUID, orderAmount decimal.Decimal) (bool, error) {
	rejection, err := c.Explain(ctx, promo, customerID, orderAmount)
	if err != nil {
		return false, err
	}
	return rejection == RejectionNone, nil
}

// Explain returns the first failing rule, in the order: active flag, validity
// window [from, to), minimum order amount, per-customer limit.
func (c *Checker) Explain(ctx context.Context, promo *models.PromoCode, customerID *uuid.UUID, orderAmount decimal.Decimal) (Rejection, error) {
	if promo == nil || !promo.IsActive {
		return RejectionInactive, nil
	}
	now := c.now()
	if now.Before(promo.ValidFrom) {
		return RejectionNotStarted, nil
	}
	if !now.Before(promo.ValidTo) {
		return RejectionExpired, nil
	}
	if orderAmount.LessThan(promo.MinimumOrderAmount) {
		return RejectionMinimumOrderNotMet, nil
	}
	if promo.PerCustomerLimit != nil && customerID != nil && c.usages != nil {
		used, err := c.usages.CountUsagesByCustomer(ctx, promo.ID, *customerID)
		if err != nil {
			return RejectionNone, err
		}
		if used >= int64(*promo.PerCustomerLimit) {
			return RejectionCustomerLimit, nil
		}
	}
	return RejectionNone, nil
}

// GlobalLimitReached reports whether the promo has no redemptions left.
func GlobalLimitReached(promo *models.PromoCode) bool {
	return promo != nil && promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit
}
