package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newWebhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/checkout/webhook", VerifyWebhookSignature(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	r.GET("/checkout/return", VerifyWebhookSignature(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return r
}

func postCallback(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/checkout/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookSkipsVerificationWhenUnconfigured(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	r := newWebhookRouter()

	w := postCallback(r, url.Values{"order_ref": {"ref-1"}, "status": {"paid"}})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookRejectsForgedConfirmation(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_live_x")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_y")
	r := newWebhookRouter()

	// a buyer holding only the order ref cannot confirm their own payment
	w := postCallback(r, url.Values{"order_ref": {"ref-1"}, "status": {"paid"}})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = postCallback(r, url.Values{
		"order_ref": {"ref-1"},
		"status":    {"paid"},
		"signature": {"deadbeef"},
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookAcceptsSignedConfirmation(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_live_x")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_y")
	r := newWebhookRouter()

	sig := SignCallback("whsec_y", "ref-1", "paid")
	w := postCallback(r, url.Values{
		"order_ref": {"ref-1"},
		"status":    {"paid"},
		"signature": {strings.ToUpper(sig)}, // case-insensitive compare
	})
	require.Equal(t, http.StatusOK, w.Code)

	// signature over different fields does not transfer to another order
	w = postCallback(r, url.Values{
		"order_ref": {"ref-2"},
		"status":    {"paid"},
		"signature": {sig},
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestReturnURLVerifiedFromQuery(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_live_x")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_y")
	r := newWebhookRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checkout/return?order_ref=ref-1&status=paid", nil))
	require.Equal(t, http.StatusForbidden, w.Code)

	sig := SignCallback("whsec_y", "ref-1", "paid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checkout/return?order_ref=ref-1&status=paid&signature="+sig, nil))
	require.Equal(t, http.StatusOK, w.Code)

	// missing webhook secret with a live provider key fails closed
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checkout/return?order_ref=ref-1&status=paid&signature="+sig, nil))
	require.Equal(t, http.StatusForbidden, w.Code)
}
