package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/loomline/loomline-api/controllers"
	"github.com/loomline/loomline-api/middlewares"
)

func OrderRoutes(server *gin.Engine) {
	order := server.Group("/", middlewares.RequireAuth())
	{
		order.POST("/coupon/validate", controllers.ValidateCoupon)
		order.POST("/order", controllers.CreateOrder)
		order.GET("/order/mine", controllers.GetMyOrders)
		order.GET("/order/:orderId", controllers.GetOrderById)
		order.POST("/payment/verify", controllers.VerifyPayment)
	}

	// The gateway authenticates with its signature header, not a bearer token.
	server.POST("/payment/webhook", controllers.HandlePaymentWebhook)
}
