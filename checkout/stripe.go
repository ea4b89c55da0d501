package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/zeriouslyzen/cosmic-sub000/models"
)

// StripeClient creates hosted checkout sessions against the payment
// provider's session endpoint. When no secret key is configured the
// dispatcher skips the network call entirely and simulates success, so a
// zero-value client is usable in development.
type StripeClient struct {
	secretKey  string
	apiURL     string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

// NewStripeClientFromEnv reads the provider configuration once at startup.
func NewStripeClientFromEnv() *StripeClient {
	return &StripeClient{
		secretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		apiURL:     os.Getenv("STRIPE_API_URL"),
		successURL: os.Getenv("CHECKOUT_SUCCESS_URL"),
		cancelURL:  os.Getenv("CHECKOUT_CANCEL_URL"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether a real provider credential is present.
func (c *StripeClient) Configured() bool {
	return c.secretKey != "" && c.apiURL != ""
}

type sessionItem struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type sessionRequest struct {
	OrderID    string        `json:"orderId"`
	Items      []sessionItem `json:"items"`
	Total      string        `json:"total"`
	UserID     string        `json:"userId"`
	SuccessURL string        `json:"successUrl,omitempty"`
	CancelURL  string        `json:"cancelUrl,omitempty"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
}

// CreateSession posts the order's line items to the provider and returns the
// hosted page URL the browser should be redirected to.
func (c *StripeClient) CreateSession(ctx context.Context, order *models.Order) (sessionID, url string, err error) {
	payload := sessionRequest{
		OrderID:    order.OrderRef,
		Total:      order.Total.StringFixed(2),
		UserID:     order.UserID,
		SuccessURL: c.successURL,
		CancelURL:  c.cancelURL,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, sessionItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice.StringFixed(2),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", "", fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to reach payment provider: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr sessionResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return "", "", fmt.Errorf("provider error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return "", "", fmt.Errorf("provider error (%d): %s", resp.StatusCode, string(raw))
	}

	var session sessionResponse
	if err := json.Unmarshal(raw, &session); err != nil {
		return "", "", fmt.Errorf("parse session response: %w", err)
	}
	if session.URL == "" {
		return "", "", fmt.Errorf("provider returned empty checkout URL")
	}
	return session.SessionID, session.URL, nil
}
