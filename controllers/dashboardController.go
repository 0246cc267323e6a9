package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/loomline/loomline-api/initializers"
	"github.com/loomline/loomline-api/models"
)

func GetDashboardCounts(ctx *gin.Context) {
	var orderCount, productCount, userCount, couponCount, pendingPayments int64

	db := initializers.DB
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		log.Errorf("Dashboard order count failed: %v", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to load dashboard counts")
		return
	}
	db.Model(&models.Product{}).Count(&productCount)
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Coupon{}).Count(&couponCount)
	db.Model(&models.Order{}).Where("payment_status = ?", models.PaymentStatusPending).Count(&pendingPayments)

	ctx.JSON(http.StatusOK, gin.H{
		"orders":          orderCount,
		"products":        productCount,
		"users":           userCount,
		"coupons":         couponCount,
		"pendingPayments": pendingPayments,
	})
}
