package models

import "gorm.io/gorm"

type CartItem struct {
	gorm.Model
	UserID    int    `json:"userId"`
	ProductID int    `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type WishlistItem struct {
	gorm.Model
	UserID    int `json:"userId"`
	ProductID int `json:"productId" binding:"required"`
}
