package initializers

import (
	log "github.com/sirupsen/logrus"

	"github.com/loomline/loomline-api/models"
)

func SyncDatabase() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Product{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		log.Fatalf("Failed to sync database: %v", err)
	}
	log.Info("Database synced successfully.")
}
