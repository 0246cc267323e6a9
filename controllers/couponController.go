package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/loomline/loomline-api/initializers"
	"github.com/loomline/loomline-api/middlewares"
	"github.com/loomline/loomline-api/models"
	"github.com/loomline/loomline-api/services"
)

// ValidateCoupon checks a code against the caller's cart. Nothing is consumed
// here: usage is recorded when the payment is confirmed.
func ValidateCoupon(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var body struct {
		Code      string                    `json:"code" binding:"required"`
		CartTotal float64                   `json:"cartTotal" binding:"required"`
		Items     []services.OrderItemInput `json:"items"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	result, err := services.NewCouponService(initializers.DB).Validate(ctx.Request.Context(), userId, body.Code, body.CartTotal)
	if err != nil {
		log.Errorf("Coupon validation failed for code %s: %v", body.Code, err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	if !result.Valid {
		sendErrorResponse(ctx, http.StatusBadRequest, result.Message)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"valid": true,
		"coupon": gin.H{
			"id":             result.CouponID,
			"code":           result.Code,
			"discountType":   result.DiscountType,
			"discountValue":  result.DiscountValue,
			"discountAmount": result.DiscountAmount,
		},
	})
}

func CreateCoupon(ctx *gin.Context) {
	var coupon models.Coupon
	if err := ctx.ShouldBindJSON(&coupon); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if coupon.DiscountType != models.DiscountTypePercentage && coupon.DiscountType != models.DiscountTypeFixed {
		sendErrorResponse(ctx, http.StatusBadRequest, "discountType must be PERCENTAGE or FIXED")
		return
	}
	coupon.UsedCount = 0

	if err := initializers.DB.Create(&coupon).Error; err != nil {
		log.Errorf("Failed to create coupon: %v", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create coupon")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"coupon": coupon})
}

func GetCoupons(ctx *gin.Context) {
	var coupons []models.Coupon
	if result := initializers.DB.Order("created_at desc").Find(&coupons); result.Error != nil {
		log.Errorf("Failed to fetch coupons: %v", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch coupons")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"coupons": coupons})
}

func UpdateCoupon(ctx *gin.Context) {
	couponId, err := strconv.Atoi(ctx.Param("couponId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse coupon id")
		return
	}

	var coupon models.Coupon
	err = initializers.DB.First(&coupon, couponId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sendErrorResponse(ctx, http.StatusNotFound, "Coupon not found")
		return
	}
	if err != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch coupon")
		return
	}

	var updates models.Coupon
	if err := ctx.ShouldBindJSON(&updates); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	// The running usage counter is owned by reconciliation; admin edits must
	// not touch it.
	if err := initializers.DB.Model(&coupon).Updates(map[string]any{
		"description":      updates.Description,
		"discount_type":    updates.DiscountType,
		"discount_value":   updates.DiscountValue,
		"start_date":       updates.StartDate,
		"end_date":         updates.EndDate,
		"is_active":        updates.IsActive,
		"minimum_purchase": updates.MinimumPurchase,
		"maximum_discount": updates.MaximumDiscount,
		"usage_limit":      updates.UsageLimit,
		"per_user_limit":   updates.PerUserLimit,
		"single_use":       updates.SingleUse,
		"first_order_only": updates.FirstOrderOnly,
		"allowed_users":    updates.AllowedUsers,
		"excluded_users":   updates.ExcludedUsers,
	}).Error; err != nil {
		log.Errorf("Failed to update coupon %d: %v", couponId, err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update coupon")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Coupon updated successfully."})
}

func DeleteCoupon(ctx *gin.Context) {
	couponId, err := strconv.Atoi(ctx.Param("couponId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse coupon id")
		return
	}

	if result := initializers.DB.Delete(&models.Coupon{}, couponId); result.Error != nil {
		log.Errorf("Failed to delete coupon %d: %v", couponId, result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete coupon")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Coupon deleted successfully."})
}
