package middleware

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// VerifyWebhookSignature authenticates payment-provider callbacks before any
// reconciliation runs, so a caller holding only an order ref cannot mark
// their own order paid. The provider signs each callback with
// sha1(secret:order_ref:status), sent as the "signature" form/query field.
// When no provider credential is configured (development mode, payments are
// simulated and never reach these routes with real money) the check is
// skipped.
func VerifyWebhookSignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		if os.Getenv("STRIPE_SECRET_KEY") == "" {
			c.Next()
			return
		}

		secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		if secret == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "webhook secret not configured"})
			c.Abort()
			return
		}

		provided := callbackParam(c, "signature")
		if provided == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "missing webhook signature"})
			c.Abort()
			return
		}

		calculated := SignCallback(secret, callbackParam(c, "order_ref"), callbackParam(c, "status"))
		if !strings.EqualFold(calculated, provided) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// SignCallback computes the callback signature the provider attaches to
// webhook posts and return-URL redirects.
func SignCallback(secret, orderRef, status string) string {
	h := sha1.New()
	h.Write([]byte(secret + ":" + orderRef + ":" + status))
	return hex.EncodeToString(h.Sum(nil))
}

// callbackParam reads a field from the form body (webhook POST) or the query
// string (return-URL GET).
func callbackParam(c *gin.Context, name string) string {
	if v := strings.TrimSpace(c.PostForm(name)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query(name))
}
