package cartControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/cart"
	"github.com/zeriouslyzen/cosmic-sub000/ledger"
	"github.com/zeriouslyzen/cosmic-sub000/middleware"
)

type addItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type setQuantityInput struct {
	Quantity int `json:"quantity"`
}

type applyStardustInput struct {
	Amount int `json:"amount" binding:"required"`
}

func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrNotSignedIn):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrBadQuantity),
		errors.Is(err, cart.ErrNoSuchProduct),
		errors.Is(err, ledger.ErrInsufficientStardust):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrUnknownItem):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
	}
}

// GetCart returns the current snapshot.
// GET /user/cart
func GetCart(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := carts.Session(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, sess.Snapshot())
	}
}

// AddItem puts a product in the cart; repeats increment the quantity.
// POST /user/cart
func AddItem(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input addItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}

		ctx := c.Request.Context()
		sess, err := carts.Session(ctx, middleware.UserID(c))
		if err != nil {
			cartError(c, err)
			return
		}
		if err := sess.AddProduct(ctx, input.ProductID, input.Quantity); err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, sess.Snapshot())
	}
}

// SetQuantity changes a row's quantity; zero removes the row.
// PUT /user/cart/items/:id
func SetQuantity(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil || itemID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
			return
		}
		var input setQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		ctx := c.Request.Context()
		sess, err := carts.Session(ctx, middleware.UserID(c))
		if err != nil {
			cartError(c, err)
			return
		}
		if err := sess.SetQuantity(ctx, uint(itemID), input.Quantity); err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, sess.Snapshot())
	}
}

// RemoveItem deletes a row from the cart.
// DELETE /user/cart/items/:id
func RemoveItem(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil || itemID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
			return
		}

		ctx := c.Request.Context()
		sess, err := carts.Session(ctx, middleware.UserID(c))
		if err != nil {
			cartError(c, err)
			return
		}
		if err := sess.Remove(ctx, uint(itemID)); err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, sess.Snapshot())
	}
}

// ClearCart empties the cart.
// DELETE /user/cart
func ClearCart(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess, err := carts.Session(ctx, middleware.UserID(c))
		if err != nil {
			cartError(c, err)
			return
		}
		if err := sess.Clear(ctx); err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// ApplyStardust earmarks star dust as a discount for this session.
// POST /user/cart/stardust
func ApplyStardust(carts *cart.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input applyStardustInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		sess, err := carts.Session(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			cartError(c, err)
			return
		}
		if err := sess.ApplyStardustDiscount(input.Amount); err != nil {
			cartError(c, err)
			return
		}
		c.JSON(http.StatusOK, sess.Snapshot())
	}
}
