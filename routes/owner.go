package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/checkout"
	orderControllers "github.com/zeriouslyzen/cosmic-sub000/controllers/order"
	productcontroller "github.com/zeriouslyzen/cosmic-sub000/controllers/product"
	"github.com/zeriouslyzen/cosmic-sub000/middleware"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

// SetupOwnerRoutes registers all "/owner/*" endpoints. Requires the owner
// API key.
func SetupOwnerRoutes(r *gin.Engine, s store.Store, dispatcher *checkout.Dispatcher) {
	ownerGroup := r.Group("/owner")
	ownerGroup.Use(middleware.ValidateOwnerKey)
	{
		// Product management
		productOwner := ownerGroup.Group("/products")
		{
			productOwner.POST("", productcontroller.CreateProduct(s))
			productOwner.PUT("/:id", productcontroller.UpdateProduct(s))
			productOwner.GET("", productcontroller.GetProducts(s))
			productOwner.DELETE("/:id", productcontroller.DeleteProduct(s))
			productOwner.GET("/export-excel", productcontroller.ExportProductsToExcel(s))
		}

		// Order management
		orderOwner := ownerGroup.Group("/orders")
		{
			orderOwner.GET("", orderControllers.GetAllOrders(s))
			orderOwner.GET("/ws", orderControllers.OrderWebSocket)
			orderOwner.PUT("/:orderRef/status", orderControllers.UpdateOrderStatus(s))
			orderOwner.PUT("/:orderRef/payment-status", orderControllers.UpdatePaymentStatus(s, dispatcher))
		}
	}
}
