package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/loomline/loomline-api/initializers"
	"github.com/loomline/loomline-api/middlewares"
	"github.com/loomline/loomline-api/models"
	"github.com/loomline/loomline-api/payments"
	"github.com/loomline/loomline-api/services"
)

func CreateOrder(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var input services.CreateOrderInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		log.Errorf("JSON binding error: %v", err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	gateway, err := payments.NewClient()
	if err != nil {
		log.Errorf("Payment gateway not configured: %v", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Missing payment configuration")
		return
	}

	order, intent, err := services.NewOrderService(initializers.DB, gateway).Create(ctx.Request.Context(), userId, input)
	switch {
	case errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrTotalMismatch),
		errors.Is(err, services.ErrCouponInvalid):
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrInvalidAddress):
		sendErrorResponse(ctx, http.StatusBadRequest, "invalid shipping address")
		return
	case errors.Is(err, services.ErrProductNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, "product not found")
		return
	case err != nil:
		log.Errorf("Failed to create order for user %d: %v", userId, err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create order")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": "Order created successfully. Complete payment to confirm.",
		"order": gin.H{
			"id":    order.ID,
			"total": order.Total,
		},
		"payment": intent,
	})
}

func GetMyOrders(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var orders []models.Order
	result := initializers.DB.Preload("OrderItems").
		Where("user_id = ?", userId).
		Order("created_at desc").
		Find(&orders)
	if result.Error != nil {
		log.Errorf("Failed to fetch orders for user %d: %v", userId, result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

func GetOrderById(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	var order models.Order
	err = initializers.DB.Preload("OrderItems").First(&order, orderId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Errorf("Failed to fetch order %d: %v", orderId, err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	if order.UserID != int(userId) && !isAdmin(ctx) {
		sendErrorResponse(ctx, http.StatusForbidden, "You do not have access to this order")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

func GetOrders(ctx *gin.Context) {
	var orders []models.Order

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	offset := (page - 1) * limit

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	query := initializers.DB.Preload("OrderItems")
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	result := query.Order("created_at " + sortOrder).Limit(limit).Offset(offset).Find(&orders)
	if result.Error != nil {
		log.Errorf("Failed to fetch orders: %v", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch orders")
		return
	}

	var count int64
	countQuery := initializers.DB.Model(&models.Order{})
	if status := ctx.Query("status"); status != "" {
		countQuery = countQuery.Where("status = ?", status)
	}
	countQuery.Count(&count)

	totalPages := math.Ceil(float64(count) / float64(limit))
	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
			"hasPrevPage": page > 1,
			"hasNextPage": int(totalPages) > page,
		},
	})
}

// allowedTransitions are the admin-driven fulfilment moves. Payment-driven
// transitions (PENDING to PROCESSING or CANCELLED) belong to reconciliation.
var allowedTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
}

func UpdateOrderStatus(ctx *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	var order models.Order
	err = initializers.DB.First(&order, orderId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	if !transitionAllowed(order.Status, body.Status) {
		sendErrorResponse(ctx, http.StatusConflict, "Invalid status transition")
		return
	}

	result := initializers.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderId, order.Status).
		Update("status", body.Status)
	if result.Error != nil {
		log.Errorf("Failed to update order %d status: %v", orderId, result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update order status")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusConflict, "Order status changed concurrently, retry")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order status updated successfully."})
}

func GetUndeliveredOrders(ctx *gin.Context) {
	var count int64
	result := initializers.DB.Model(&models.Order{}).
		Where("status NOT IN ?", []string{models.OrderStatusDelivered, models.OrderStatusCancelled}).
		Count(&count)
	if result.Error != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to count undelivered orders")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"undeliveredOrderCount": count})
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isAdmin(ctx *gin.Context) bool {
	userClaims, exists := ctx.Get("user")
	if !exists {
		return false
	}
	claims, ok := userClaims.(jwt.MapClaims)
	if !ok {
		return false
	}
	role, ok := claims["role"].(string)
	return ok && role == "admin"
}
