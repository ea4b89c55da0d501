package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

type productInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Zodiac      string `json:"zodiac"` // comma-joined sign tags
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
	Stock       int    `json:"stock_quantity"`
}

func (in productInput) parsePrice() (decimal.Decimal, bool) {
	price, err := decimal.NewFromString(in.Price)
	if err != nil || price.IsNegative() {
		return decimal.Zero, false
	}
	return price, true
}

// CreateProduct adds a product to the catalog (owner only).
// POST /owner/products
func CreateProduct(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
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

		product := models.Product{
			Title:       input.Title,
			Description: input.Description,
			Price:       price,
			Zodiac:      input.Zodiac,
			Category:    input.Category,
			ImageURL:    input.ImageURL,
			Stock:       input.Stock,
		}
		if err := s.CreateProduct(c.Request.Context(), &product); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
