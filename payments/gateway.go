package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.razorpay.com"

// GatewayOrder is the gateway's record of an initiated payment. ID is the
// reference later echoed back in webhook and verify notifications.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Client struct {
	http  *resty.Client
	keyID string
}

// NewClient builds a gateway client from RAZORPAY_KEY_ID and
// RAZORPAY_KEY_SECRET. RAZORPAY_BASE_URL overrides the API host.
func NewClient() (*Client, error) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay credentials are not set")
	}

	baseURL := os.Getenv("RAZORPAY_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(keyID, keySecret).
		SetTimeout(30 * time.Second)

	return &Client{http: http, keyID: keyID}, nil
}

// KeyID is the public key the storefront needs to open the checkout widget.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder initiates a gateway order for the given amount in minor
// currency units (paise for INR).
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	body := map[string]any{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(body).
		Post("/v1/orders")
	if err != nil {
		return nil, fmt.Errorf("gateway order request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("gateway order request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var order GatewayOrder
	if err := json.Unmarshal(resp.Body(), &order); err != nil {
		return nil, fmt.Errorf("failed to parse gateway order response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway order response missing id: %s", string(resp.Body()))
	}

	return &order, nil
}
