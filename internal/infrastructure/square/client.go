package square

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"cascadeconnect/internal/domain/money"
)

const (
	productionURL  = "https://connect.squareup.com"
	sandboxURL     = "https://connect.squareupsandbox.com"
	defaultTimeout = 30 * time.Second
	apiVersion     = "2024-06-04"
)

var ErrNotConfigured = errors.New("square is not configured: set SQUARE_ACCESS_TOKEN and SQUARE_LOCATION_ID")

// Client creates Square payment links.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	locationID  string
}

// NewClient returns a payment link client. environment selects the sandbox
// or production host.
func NewClient(accessToken, locationID, environment string) *Client {
	baseURL := sandboxURL
	if environment == "production" {
		baseURL = productionURL
	}

	return &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     baseURL,
		accessToken: accessToken,
		locationID:  locationID,
	}
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c.accessToken != "" && c.locationID != ""
}

// CreateLinkParams describes one payment link request. Amount is a decimal
// string ("10.00"); IdempotencyKey is optional and forwarded verbatim when
// set.
type CreateLinkParams struct {
	OrderID        string
	Amount         string
	Name           string
	Description    string
	IdempotencyKey string
}

// PaymentLink is the subset of Square's payment link we surface.
type PaymentLink struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	OrderID   string `json:"orderId"`
	CreatedAt string `json:"createdAt"`
}

// VendorError carries the upstream status and a message, rewritten for the
// known failure classes (bad credentials, wrong location).
type VendorError struct {
	StatusCode int
	Message    string
}

func (e *VendorError) Error() string {
	return e.Message
}

type createLinkRequest struct {
	IdempotencyKey string    `json:"idempotency_key"`
	QuickPay       *quickPay `json:"quick_pay"`
}

type quickPay struct {
	Name       string      `json:"name"`
	PriceMoney amountMoney `json:"price_money"`
	LocationID string      `json:"location_id"`
}

type amountMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createLinkResponse struct {
	PaymentLink struct {
		ID        string `json:"id"`
		URL       string `json:"url"`
		OrderID   string `json:"order_id"`
		CreatedAt string `json:"created_at"`
	} `json:"payment_link"`
	Errors []squareError `json:"errors"`
}

type squareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// CreateLink creates a quick-pay payment link. The decimal amount is
// converted to integer minor units by exact string arithmetic.
func (c *Client) CreateLink(ctx context.Context, params CreateLinkParams) (*PaymentLink, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	cents, err := money.ParseCents(params.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", params.Amount, err)
	}

	idempotencyKey := params.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	name := params.Name
	if name == "" {
		name = "Payment " + params.OrderID
	}

	reqBody := createLinkRequest{
		IdempotencyKey: idempotencyKey,
		QuickPay: &quickPay{
			Name:       name,
			PriceMoney: amountMoney{Amount: cents, Currency: "USD"},
			LocationID: c.locationID,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/online-checkout/payment-links", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment link request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Square-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment link request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment link response: %w", err)
	}

	var decoded createLinkResponse
	if err := json.Unmarshal(body, &decoded); err != nil && resp.StatusCode < 400 {
		return nil, fmt.Errorf("failed to decode payment link response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, classifyError(resp.StatusCode, decoded.Errors)
	}

	return &PaymentLink{
		ID:        decoded.PaymentLink.ID,
		URL:       decoded.PaymentLink.URL,
		OrderID:   decoded.PaymentLink.OrderID,
		CreatedAt: decoded.PaymentLink.CreatedAt,
	}, nil
}

// classifyError rewrites the known failure classes into actionable text;
// anything else passes the upstream detail through.
func classifyError(status int, errs []squareError) error {
	detail := ""
	code := ""
	if len(errs) > 0 {
		detail = errs[0].Detail
		code = errs[0].Code
	}

	switch {
	case status == http.StatusUnauthorized || code == "UNAUTHORIZED":
		return &VendorError{
			StatusCode: status,
			Message:    "square rejected the access token: check SQUARE_ACCESS_TOKEN and that it matches the configured environment",
		}
	case code == "NOT_FOUND" && strings.Contains(strings.ToLower(detail), "location"):
		return &VendorError{
			StatusCode: status,
			Message:    "square location not found: check SQUARE_LOCATION_ID against the account's locations",
		}
	default:
		if detail == "" {
			detail = http.StatusText(status)
		}
		return &VendorError{StatusCode: status, Message: detail}
	}
}
