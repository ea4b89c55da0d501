package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/cart"
	"github.com/zeriouslyzen/cosmic-sub000/checkout"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

// SetupRoutes is the single entry-point that wires up the Auth, User, Owner
// and Checkout route groups.
func SetupRoutes(r *gin.Engine, s store.Store, carts *cart.Manager, dispatcher *checkout.Dispatcher) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, s, carts)

	// Customer routes (JWT-protected)
	SetupUserRoutes(r, s, carts)

	// Owner dashboard routes (owner-key-protected)
	SetupOwnerRoutes(r, s, dispatcher)

	// Checkout routes
	SetupCheckoutRoutes(r, dispatcher)
}
