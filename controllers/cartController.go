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
)

func AddCartItem(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var cartItem models.CartItem
	if err := ctx.ShouldBindJSON(&cartItem); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	cartItem.UserID = int(userId)

	var existing models.CartItem
	err := initializers.DB.
		Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
			cartItem.UserID, cartItem.ProductID, cartItem.Size, cartItem.Color).
		First(&existing).Error

	if err == nil {
		existing.Quantity += cartItem.Quantity
		if err := initializers.DB.Save(&existing).Error; err != nil {
			log.Errorf("Failed to update cart item: %v", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart item quantity")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item quantity updated", "id": existing.ID})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("Failed to fetch cart item: %v", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch cart item")
		return
	}

	if err := initializers.DB.Create(&cartItem).Error; err != nil {
		log.Errorf("Failed to create cart item: %v", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Item added to cart", "id": cartItem.ID})
}

func GetCart(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var items []models.CartItem
	if result := initializers.DB.Where("user_id = ?", userId).Find(&items); result.Error != nil {
		log.Errorf("Failed to fetch cart: %v", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"cart": items})
}

func RemoveCartItem(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	itemId, err := strconv.Atoi(ctx.Param("itemId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse cart item id")
		return
	}

	result := initializers.DB.Where("id = ? AND user_id = ?", itemId, userId).Delete(&models.CartItem{})
	if result.Error != nil {
		log.Errorf("Failed to remove cart item %d: %v", itemId, result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to remove cart item")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Cart item not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item removed"})
}

func ToggleWishlistItem(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var body models.WishlistItem
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var existing models.WishlistItem
	err := initializers.DB.Where("user_id = ? AND product_id = ?", userId, body.ProductID).First(&existing).Error
	if err == nil {
		if err := initializers.DB.Delete(&existing).Error; err != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update wishlist")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Removed from wishlist", "inWishlist": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update wishlist")
		return
	}

	item := models.WishlistItem{UserID: int(userId), ProductID: body.ProductID}
	if err := initializers.DB.Create(&item).Error; err != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update wishlist")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Added to wishlist", "inWishlist": true})
}

func GetWishlist(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var items []models.WishlistItem
	if result := initializers.DB.Where("user_id = ?", userId).Find(&items); result.Error != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch wishlist")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"wishlist": items})
}
