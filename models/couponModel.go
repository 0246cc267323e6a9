package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFixed      = "FIXED"
)

type Coupon struct {
	gorm.Model
	Code            string     `json:"code" gorm:"uniqueIndex" binding:"required"`
	Description     string     `json:"description"`
	DiscountType    string     `json:"discountType" binding:"required"`
	DiscountValue   float64    `json:"discountValue" binding:"required"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	IsActive        bool       `json:"isActive"`
	MinimumPurchase float64    `json:"minimumPurchase"`
	// MaximumDiscount caps a percentage discount; zero means no cap.
	MaximumDiscount float64 `json:"maximumDiscount"`
	// UsageLimit is the global redemption cap; zero means unlimited.
	UsageLimit int `json:"usageLimit"`
	// PerUserLimit caps redemptions per user; zero means unlimited.
	PerUserLimit   int            `json:"perUserLimit"`
	SingleUse      bool           `json:"singleUse"`
	FirstOrderOnly bool           `json:"firstOrderOnly"`
	AllowedUsers   datatypes.JSON `json:"allowedUsers"`
	ExcludedUsers  datatypes.JSON `json:"excludedUsers"`
	UsedCount      int            `json:"usedCount"`
}

// CouponUsage records one successful redemption. Rows are created only after
// payment is confirmed, so abandoned carts never count against the caps.
type CouponUsage struct {
	gorm.Model
	UserID   int `json:"userId" gorm:"index"`
	CouponID int `json:"couponId" gorm:"index"`
	OrderID  int `json:"orderId"`
}
