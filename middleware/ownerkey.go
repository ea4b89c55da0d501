package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// ValidateOwnerKey guards the owner dashboard endpoints. The key is shared
// out of band with the store owner; customer JWTs never grant these routes.
func ValidateOwnerKey(c *gin.Context) {
	key := c.GetHeader("X-OWNER-KEY")
	if key == "" || key != os.Getenv("OWNER_API_KEY") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing owner key"})
		c.Abort()
		return
	}
	c.Next()
}
