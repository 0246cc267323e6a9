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

func CreateAddress(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var address models.Address
	if err := ctx.ShouldBindJSON(&address); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	address.UserID = int(userId)

	if err := initializers.DB.Create(&address).Error; err != nil {
		log.Errorf("Failed to create address: %v", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create address")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"address": address})
}

func GetAddresses(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var addresses []models.Address
	if result := initializers.DB.Where("user_id = ?", userId).Find(&addresses); result.Error != nil {
		log.Errorf("Failed to fetch addresses: %v", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch addresses")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"addresses": addresses})
}

func UpdateAddress(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	addressId, err := strconv.Atoi(ctx.Param("addressId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse address id")
		return
	}

	var address models.Address
	err = initializers.DB.Where("id = ? AND user_id = ?", addressId, userId).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sendErrorResponse(ctx, http.StatusNotFound, "Address not found")
		return
	}
	if err != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch address")
		return
	}

	var updates models.Address
	if err := ctx.ShouldBindJSON(&updates); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	updates.UserID = int(userId)

	if err := initializers.DB.Model(&address).Updates(updates).Error; err != nil {
		log.Errorf("Failed to update address %d: %v", addressId, err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update address")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"address": address})
}

func DeleteAddress(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	addressId, err := strconv.Atoi(ctx.Param("addressId"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse address id")
		return
	}

	result := initializers.DB.Where("id = ? AND user_id = ?", addressId, userId).Delete(&models.Address{})
	if result.Error != nil {
		log.Errorf("Failed to delete address %d: %v", addressId, result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete address")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Address not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Address deleted successfully."})
}
