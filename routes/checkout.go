package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/checkout"
	checkoutControllers "github.com/zeriouslyzen/cosmic-sub000/controllers/checkout"
	"github.com/zeriouslyzen/cosmic-sub000/middleware"
)

// SetupCheckoutRoutes registers the checkout endpoints. The webhook and the
// return URL are called by the payment provider and the returning browser,
// so they stay outside the JWT group and are authenticated by the provider's
// callback signature instead.
func SetupCheckoutRoutes(r *gin.Engine, dispatcher *checkout.Dispatcher) {
	checkoutGroup := r.Group("/checkout")
	{
		checkoutGroup.POST("", middleware.ValidateToken, checkoutControllers.StartCheckout(dispatcher))
		checkoutGroup.POST("/webhook", middleware.VerifyWebhookSignature(), checkoutControllers.PaymentWebhook(dispatcher))
		checkoutGroup.GET("/return", middleware.VerifyWebhookSignature(), checkoutControllers.PaymentReturn(dispatcher))
	}
}
