package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/checkout"
	"github.com/zeriouslyzen/cosmic-sub000/middleware"
	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

type updateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

type updatePaymentStatusInput struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// GetUserOrders lists the signed-in user's orders, newest first.
// GET /user/orders
func GetUserOrders(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "please sign in"})
			return
		}
		orders, err := s.ListUserOrders(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetOrderByRef returns a single order for the signed-in user.
// GET /user/orders/:orderRef
func GetOrderByRef(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := s.GetOrderByRef(c.Request.Context(), c.Param("orderRef"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			}
			return
		}
		if order.UserID != middleware.UserID(c) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GetAllOrders lists every order for the owner dashboard.
// GET /owner/orders
func GetAllOrders(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := s.ListOrders(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// UpdateOrderStatus moves an order through the fulfilment flow
// (pending → processing → shipped → delivered).
// PUT /owner/orders/:orderRef/status
func UpdateOrderStatus(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("orderRef")
		var req updateStatusInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		if err := s.UpdateOrderStatus(ctx, orderRef, newStatus); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			}
			return
		}
		if order, err := s.GetOrderByRef(ctx, orderRef); err == nil {
			BroadcastOrder(*order)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
	}
}

// UpdatePaymentStatus is the owner's manual reconciliation toggle for
// send-to-handle payments. Marking an order paid runs the full
// reconciliation (stardust credit, cart clear), not a bare status write, so
// manual payments earn the same as hosted ones.
// PUT /owner/orders/:orderRef/payment-status
func UpdatePaymentStatus(s store.Store, d *checkout.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("orderRef")
		var req updatePaymentStatusInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := models.ParsePaymentStatus(req.PaymentStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		if newStatus == models.PaymentStatusPaid {
			_, earned, err := d.Reconcile(ctx, orderRef)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				} else {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reconcile order"})
				}
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed", "stardust_earned": earned})
			return
		}

		if err := s.UpdatePaymentStatus(ctx, orderRef, newStatus); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update payment status"})
			}
			return
		}
		if order, err := s.GetOrderByRef(ctx, orderRef); err == nil {
			BroadcastOrder(*order)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated"})
	}
}
