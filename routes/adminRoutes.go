package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/loomline/loomline-api/controllers"
	"github.com/loomline/loomline-api/middlewares"
)

func AdminRoutes(server *gin.Engine) {
	admin := server.Group("/admin", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.POST("/products", controllers.CreateProduct)
		admin.PUT("/products/:id", controllers.UpdateProduct)
		admin.DELETE("/products/:id", controllers.DeleteProduct)

		admin.POST("/coupons", controllers.CreateCoupon)
		admin.GET("/coupons", controllers.GetCoupons)
		admin.PUT("/coupons/:couponId", controllers.UpdateCoupon)
		admin.DELETE("/coupons/:couponId", controllers.DeleteCoupon)

		admin.GET("/orders", controllers.GetOrders)
		admin.PATCH("/orders/:orderId", controllers.UpdateOrderStatus)
		admin.GET("/orders/undelivered", controllers.GetUndeliveredOrders)

		admin.GET("/dashboard/counts", controllers.GetDashboardCounts)
	}
}
