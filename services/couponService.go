package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/loomline/loomline-api/models"
)

type CouponService struct {
	db *gorm.DB
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db}
}

// CouponResult is the outcome of validating a code against a cart. When Valid
// is false, Message carries the user-facing rejection reason.
type CouponResult struct {
	Valid          bool    `json:"valid"`
	Message        string  `json:"message,omitempty"`
	CouponID       uint    `json:"id,omitempty"`
	Code           string  `json:"code,omitempty"`
	DiscountType   string  `json:"discountType,omitempty"`
	DiscountValue  float64 `json:"discountValue,omitempty"`
	DiscountAmount float64 `json:"discountAmount,omitempty"`
}

func rejected(message string) *CouponResult {
	return &CouponResult{Valid: false, Message: message}
}

// Validate runs the full eligibility sequence for a coupon code and computes
// the discount for the given subtotal. It never mutates anything: the usage
// counter and usage records are written at confirmed payment, not here.
func (s *CouponService) Validate(ctx context.Context, userID uint, code string, subtotal float64) (*CouponResult, error) {
	var coupon models.Coupon
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rejected("coupon not found"), nil
	}
	if err != nil {
		return nil, err
	}

	if !coupon.IsActive {
		return rejected("coupon is inactive"), nil
	}

	now := time.Now()
	if now.Before(coupon.StartDate) {
		return rejected("coupon is not active yet"), nil
	}
	if coupon.EndDate != nil && now.After(*coupon.EndDate) {
		return rejected("coupon has expired"), nil
	}

	if coupon.MinimumPurchase > 0 && subtotal < coupon.MinimumPurchase {
		return rejected(fmt.Sprintf("minimum purchase of %.2f required", coupon.MinimumPurchase)), nil
	}

	excluded, err := listContainsUser(coupon.ExcludedUsers, userID)
	if err != nil {
		return nil, err
	}
	if excluded {
		return rejected("coupon is not available for this account"), nil
	}

	allowed, restricted, err := allowListCheck(coupon.AllowedUsers, userID)
	if err != nil {
		return nil, err
	}
	if restricted && !allowed {
		return rejected("coupon is not available for this account"), nil
	}

	if coupon.FirstOrderOnly {
		var orderCount int64
		if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Count(&orderCount).Error; err != nil {
			return nil, err
		}
		if orderCount > 0 {
			return rejected("coupon is only valid on your first order"), nil
		}
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return rejected("coupon usage limit reached"), nil
	}

	if coupon.PerUserLimit > 0 || coupon.SingleUse {
		var userUsage int64
		err := s.db.WithContext(ctx).Model(&models.CouponUsage{}).
			Where("user_id = ? AND coupon_id = ?", userID, coupon.ID).
			Count(&userUsage).Error
		if err != nil {
			return nil, err
		}
		if coupon.PerUserLimit > 0 && userUsage >= int64(coupon.PerUserLimit) {
			return rejected(fmt.Sprintf("coupon can only be used %d times per user", coupon.PerUserLimit)), nil
		}
		if coupon.SingleUse && userUsage > 0 {
			return rejected("coupon can only be used once"), nil
		}
	}

	discount := computeDiscount(&coupon, subtotal)

	return &CouponResult{
		Valid:          true,
		CouponID:       coupon.ID,
		Code:           coupon.Code,
		DiscountType:   coupon.DiscountType,
		DiscountValue:  coupon.DiscountValue,
		DiscountAmount: discount,
	}, nil
}

func computeDiscount(coupon *models.Coupon, subtotal float64) float64 {
	var discount float64
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal * coupon.DiscountValue / 100
		if coupon.MaximumDiscount > 0 && discount > coupon.MaximumDiscount {
			discount = coupon.MaximumDiscount
		}
	case models.DiscountTypeFixed:
		discount = coupon.DiscountValue
	}
	if discount > subtotal {
		discount = subtotal
	}
	return round2(discount)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func listContainsUser(list datatypes.JSON, userID uint) (bool, error) {
	ids, err := parseUserList(list)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// allowListCheck reports whether the user is on the allow list and whether the
// list restricts the coupon at all (an empty list allows everyone).
func allowListCheck(list datatypes.JSON, userID uint) (allowed, restricted bool, err error) {
	ids, err := parseUserList(list)
	if err != nil {
		return false, false, err
	}
	if len(ids) == 0 {
		return false, false, nil
	}
	for _, id := range ids {
		if id == userID {
			return true, true, nil
		}
	}
	return false, true, nil
}

func parseUserList(list datatypes.JSON) ([]uint, error) {
	if len(list) == 0 {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal(list, &ids); err != nil {
		return nil, fmt.Errorf("malformed user list on coupon: %w", err)
	}
	return ids, nil
}
