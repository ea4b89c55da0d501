package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/store"
)

// UpdateProduct edits an existing product (owner only).
// PUT /owner/products/:id
func UpdateProduct(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var input productInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		price, ok := input.parsePrice()
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}
		if input.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock_quantity cannot be negative"})
			return
		}

		ctx := c.Request.Context()
		product, err := s.GetProduct(ctx, uint(id))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			}
			return
		}

		product.Title = input.Title
		product.Description = input.Description
		product.Price = price
		product.Zodiac = input.Zodiac
		product.Category = input.Category
		product.ImageURL = input.ImageURL
		product.Stock = input.Stock

		if err := s.UpdateProduct(ctx, product); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
