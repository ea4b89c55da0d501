package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/auth"
	"github.com/zeriouslyzen/cosmic-sub000/cart"
	"github.com/zeriouslyzen/cosmic-sub000/middleware"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

// SetupAuthRoutes registers the sign-in/sign-out endpoints.
func SetupAuthRoutes(r *gin.Engine, s store.Store, carts *cart.Manager) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signin", auth.SignIn(s))
		authGroup.POST("/signout", middleware.ValidateToken, auth.SignOut(carts.CloseSession))
	}
}
