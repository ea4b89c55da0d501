package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/zeriouslyzen/cosmic-sub000/store"
)

// GetProducts lists the catalog with filtering and sorting.
// Query params: search, zodiac, category, min_price, max_price, sort_by, order
func GetProducts(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := store.ProductFilter{
			Search:    c.Query("search"),
			Zodiac:    c.Query("zodiac"),
			Category:  c.Query("category"),
			SortBy:    c.DefaultQuery("sort_by", "created_at"),
			SortOrder: c.DefaultQuery("order", "desc"),
		}

		if minPriceStr := c.Query("min_price"); minPriceStr != "" {
			mp, err := decimal.NewFromString(minPriceStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
				return
			}
			filter.MinPrice = &mp
		}
		if maxPriceStr := c.Query("max_price"); maxPriceStr != "" {
			mp, err := decimal.NewFromString(maxPriceStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
				return
			}
			filter.MaxPrice = &mp
		}

		products, err := s.ListProducts(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
