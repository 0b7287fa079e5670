package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

var (
	// ErrNotConfigured means the gateway key pair is absent. The client is
	// still constructed so the rest of the service can start; payment
	// endpoints surface this as a gateway failure instead.
	ErrNotConfigured = errors.New("payment gateway credentials not configured")
	ErrGateway       = errors.New("payment gateway request failed")
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// GatewayOrder is the intent object returned by Razorpay's order create.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the Razorpay REST API. BaseURL is overridable for tests.
type Client struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	HTTPC     *http.Client
}

func NewClient(keyID, keySecret string) *Client {
	return &Client{
		KeyID:     keyID,
		KeySecret: keySecret,
		BaseURL:   defaultBaseURL,
		HTTPC:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether a key pair is present.
func (c *Client) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

// CreateOrder creates a payment intent for amount in major currency units,
// tagged with the order code as the receipt reference. The gateway expects
// minor units (paise).
func (c *Client) CreateOrder(amount float64, currency, receipt string) (*GatewayOrder, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload := map[string]any{
		"amount":   int64(math.Round(amount * 100)),
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTPC.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrGateway, res.StatusCode)
	}

	var out GatewayOrder
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return &out, nil
}

// Verify checks a callback signature against the configured secret.
func (c *Client) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return VerifySignature(gatewayOrderID, gatewayPaymentID, signature, c.KeySecret)
}
