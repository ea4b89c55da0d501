package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/cart"
	cartControllers "github.com/zeriouslyzen/cosmic-sub000/controllers/cart"
	orderControllers "github.com/zeriouslyzen/cosmic-sub000/controllers/order"
	productcontroller "github.com/zeriouslyzen/cosmic-sub000/controllers/product"
	userControllers "github.com/zeriouslyzen/cosmic-sub000/controllers/user"
	"github.com/zeriouslyzen/cosmic-sub000/middleware"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

// SetupUserRoutes registers all "/user/*" endpoints plus the public catalog.
func SetupUserRoutes(r *gin.Engine, s store.Store, carts *cart.Manager) {
	// Public catalog browsing
	r.GET("/products", productcontroller.GetProducts(s))
	r.GET("/products/:id", productcontroller.GetProductByID(s))

	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// Profile & star dust
		userGroup.GET("/profile", userControllers.GetProfile(s))
		userGroup.PUT("/profile", userControllers.UpdateProfile(s))
		userGroup.GET("/stardust", userControllers.GetStardustHistory(s))

		// Shopping cart
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCart(carts))
			cartGroup.POST("", cartControllers.AddItem(carts))
			cartGroup.PUT("/items/:id", cartControllers.SetQuantity(carts))
			cartGroup.DELETE("/items/:id", cartControllers.RemoveItem(carts))
			cartGroup.DELETE("", cartControllers.ClearCart(carts))
			cartGroup.POST("/stardust", cartControllers.ApplyStardust(carts))
			cartGroup.GET("/ws", cartControllers.CartWebSocket(carts))
		}

		// Order history
		userGroup.GET("/orders", orderControllers.GetUserOrders(s))
		userGroup.GET("/orders/:orderRef", orderControllers.GetOrderByRef(s))
	}
}
