package checkoutControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/cart"
	"github.com/zeriouslyzen/cosmic-sub000/checkout"
	"github.com/zeriouslyzen/cosmic-sub000/middleware"
	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

type startInput struct {
	Method string `json:"method" binding:"required"` // stripe | venmo | cashapp | crypto
}

// StartCheckout creates the order and routes to the chosen payment flow.
// POST /checkout
func StartCheckout(d *checkout.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input startInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		method, err := models.ParsePaymentMethod(input.Method)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := d.Start(c.Request.Context(), middleware.UserID(c), method)
		if err != nil {
			switch {
			case errors.Is(err, cart.ErrNotSignedIn):
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			case errors.Is(err, checkout.ErrEmptyCart),
				errors.Is(err, checkout.ErrUnknownMethod),
				errors.Is(err, store.ErrInsufficientStock):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadGateway, gin.H{"error": "Checkout failed, please try again"})
			}
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// PaymentWebhook is called by the payment provider once the hosted page
// completes. Approved payments reconcile the order; anything else is
// acknowledged and ignored. Reconciliation is idempotent, so duplicate
// deliveries are harmless.
// POST /checkout/webhook
func PaymentWebhook(d *checkout.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload struct {
			OrderRef string `json:"order_ref" form:"order_ref"`
			Status   string `json:"status" form:"status"`
		}
		if err := c.ShouldBind(&payload); err != nil || payload.OrderRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing order_ref"})
			return
		}

		if payload.Status != "paid" && payload.Status != "approved" {
			c.JSON(http.StatusOK, gin.H{"message": "Payment not successful"})
			return
		}

		order, earned, err := d.Reconcile(c.Request.Context(), payload.OrderRef)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reconcile order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":         "Order reconciled",
			"order_ref":       order.OrderRef,
			"stardust_earned": earned,
		})
	}
}

// PaymentReturn handles the browser redirect back from the hosted page.
// GET /checkout/return?order_ref=...&status=paid
func PaymentReturn(d *checkout.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Query("order_ref")
		if orderRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing order_ref"})
			return
		}
		if c.Query("status") != "paid" {
			c.JSON(http.StatusOK, gin.H{"message": "Payment not completed", "order_ref": orderRef})
			return
		}

		order, earned, err := d.Reconcile(c.Request.Context(), orderRef)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reconcile order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":         "Payment confirmed",
			"order":           order,
			"stardust_earned": earned,
		})
	}
}
