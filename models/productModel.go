package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Product struct {
	gorm.Model
	Brand       string         `json:"brand" binding:"required"`
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Price       float64        `json:"price" binding:"required"`
	Category    string         `json:"category"`
	Sizes       datatypes.JSON `json:"sizes"`
	Colors      datatypes.JSON `json:"colors"`
	ImageUrl    string         `json:"imageUrl"`
	Inventory   int            `json:"inventory"`
	TimesSold   int            `json:"timesSold"`
}
