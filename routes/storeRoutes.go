package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/loomline/loomline-api/controllers"
	"github.com/loomline/loomline-api/middlewares"
)

func ProductRoutes(server *gin.Engine) {
	server.GET("/product", controllers.GetProducts)
	server.GET("/product/:id", controllers.GetProduct)
}

func CartRoutes(server *gin.Engine) {
	cart := server.Group("/", middlewares.RequireAuth())
	{
		cart.POST("/cart", controllers.AddCartItem)
		cart.GET("/cart", controllers.GetCart)
		cart.DELETE("/cart/:itemId", controllers.RemoveCartItem)
		cart.POST("/wishlist", controllers.ToggleWishlistItem)
		cart.GET("/wishlist", controllers.GetWishlist)
	}
}

func AddressRoutes(server *gin.Engine) {
	address := server.Group("/address", middlewares.RequireAuth())
	{
		address.POST("", controllers.CreateAddress)
		address.GET("", controllers.GetAddresses)
		address.PUT("/:addressId", controllers.UpdateAddress)
		address.DELETE("/:addressId", controllers.DeleteAddress)
	}
}
