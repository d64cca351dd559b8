package promos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/mixbar-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
)

type promoStore interface {
	UsageCounter
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
}

// Service resolves promo codes and turns eligibility failures into coded
// errors.
type Service struct {
	repo    promoStore
	checker *Checker
}

func NewService(repo promoStore, checker *Checker) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	if checker == nil {
		checker = NewChecker(repo, nil)
	}
	return &Service{repo: repo, checker: checker}, nil
}

// Lookup finds a promo by code and applies the global usage cap.
func (s *Service) Lookup(ctx context.Context, code string) (*models.PromoCode, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
	}
	if GlobalLimitReached(promo) {
		return nil, rejectionError(RejectionUsageLimit)
	}
	return promo, nil
}

// CheckEligibility returns nil when the promo applies, otherwise a coded error
// describing the first failing rule.
func (s *Service) CheckEligibility(ctx context.Context, promo *models.PromoCode, customerID *uuid.UUID, orderAmount decimal.Decimal) error {
	rejection, err := s.checker.Explain(ctx, promo, customerID, orderAmount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count promo usages")
	}
	if rejection == RejectionNone {
		return nil
	}
	return rejectionError(rejection)
}

// Checker exposes the underlying eligibility checker.
func (s *Service) Checker() *Checker {
	return s.checker
}

func rejectionError(r Rejection) error {
	switch r {
	case RejectionInactive, RejectionNotStarted, RejectionExpired:
		return pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found or no longer valid")
	case RejectionMinimumOrderNotMet:
		return pkgerrors.New(pkgerrors.CodeBusinessRule, "minimum order amount not met").
			WithDetails(map[string]any{"reason": string(r)})
	case RejectionCustomerLimit, RejectionUsageLimit:
		return pkgerrors.New(pkgerrors.CodeBusinessRule, "promo usage limit exhausted").
			WithDetails(map[string]any{"reason": string(r)})
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, "unknown promo rejection")
	}
}

// RejectionOf extracts the rejection reason from a business-rule error.
func RejectionOf(err error) Rejection {
	typed := pkgerrors.As(err)
	if typed == nil {
		return RejectionNone
	}
	if details, ok := typed.Details().(map[string]any); ok {
		if reason, ok := details["reason"].(string); ok {
			return Rejection(reason)
		}
	}
	return RejectionNone
}
