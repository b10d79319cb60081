package rapyd

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

	"github.com/kinaskak/storefront-backend/pkg/config"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
	"github.com/kinaskak/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const checkoutPath = "/v1/checkout"

var (
	errAccessKeyRequired = errors.New("rapyd access key is required")
	errSecretKeyRequired = errors.New("rapyd secret key is required")
	errLoggerRequired    = errors.New("rapyd logger is required")
)

// Client wraps Rapyd's hosted-checkout REST API with centralized request
// signing, logging, and error mapping. Rapyd ships no Go SDK, so the wrapper
// talks HTTP directly.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	secretKey  string
	logger     *logger.Logger
	now        func() time.Time
}

// NewClient initializes the Rapyd wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RapydConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	accessKey := strings.TrimSpace(cfg.AccessKey)
	if accessKey == "" {
		return nil, errAccessKeyRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accessKey:  accessKey,
		secretKey:  secretKey,
		logger:     logg,
		now:        time.Now,
	}

	logg.Info(ctx, "rapyd client initialized")
	return c, nil
}

// CreateCheckoutParams is the payload for Rapyd's checkout-creation endpoint.
type CreateCheckoutParams struct {
	Amount              decimal.Decimal `json:"amount"`
	MerchantReferenceID string          `json:"merchant_reference_id"`
	CompleteCheckoutURL string          `json:"complete_checkout_url"`
	CancelCheckoutURL   string          `json:"cancel_checkout_url"`
	Country             string          `json:"country"`
	Currency            string          `json:"currency"`
	PaymentMethodTypes  []string        `json:"payment_method_types_include"`
	CustomElements      CustomElements  `json:"custom_elements"`
	Description         string          `json:"description,omitempty"`
	Metadata            any             `json:"metadata,omitempty"`
}

// CustomElements toggles hosted-page features.
type CustomElements struct {
	BillingAddressCollect bool `json:"billing_address_collect"`
}

// Checkout is the provider's view of a created checkout session.
type Checkout struct {
	ID          string   `json:"id"`
	RedirectURL string   `json:"redirect_url"`
	Status      string   `json:"status"`
	Payment     *Payment `json:"payment"`
}

// Payment is the nested payment object on a checkout session.
type Payment struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
}

type responseEnvelope struct {
	Status responseStatus  `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type responseStatus struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code"`
	Message      string `json:"message"`
	ResponseCode string `json:"response_code"`
}

// CreateCheckout registers a hosted checkout session and returns the redirect target.
func (c *Client) CreateCheckout(ctx context.Context, params CreateCheckoutParams) (*Checkout, error) {
	c.log(ctx, "request", "create_checkout", map[string]any{
		"merchant_reference_id": params.MerchantReferenceID,
		"amount":                params.Amount.String(),
		"currency":              params.Currency,
	})

	var checkout Checkout
	if err := c.post(ctx, checkoutPath, params, &checkout); err != nil {
		c.log(ctx, "error", "create_checkout", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_checkout", map[string]any{
		"checkout_id": checkout.ID,
		"status":      checkout.Status,
	})
	return &checkout, nil
}

func (c *Client) post(ctx context.Context, path string, body any, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding rapyd request")
	}

	salt, err := newSalt()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating rapyd salt")
	}
	timestamp := unixTimestamp(c.now())
	signature := signRequest("post", path, salt, timestamp, c.accessKey, c.secretKey, string(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building rapyd request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_key", c.accessKey)
	req.Header.Set("salt", salt)
	req.Header.Set("timestamp", timestamp)
	req.Header.Set("signature", signature)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling rapyd")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading rapyd response")
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding rapyd response")
	}

	if resp.StatusCode >= http.StatusBadRequest || !strings.EqualFold(envelope.Status.Status, "SUCCESS") {
		msg := envelope.Status.Message
		if msg == "" {
			msg = fmt.Sprintf("rapyd returned status %d", resp.StatusCode)
		}
		return pkgerrors.New(pkgerrors.CodeDependency, msg).WithDetails(map[string]any{
			"error_code":    envelope.Status.ErrorCode,
			"response_code": envelope.Status.ResponseCode,
		})
	}

	if dest != nil {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding rapyd payload")
		}
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	merged := map[string]any{"provider": "rapyd", "phase": phase, "operation": operation}
	for k, v := range fields {
		merged[k] = v
	}
	logCtx := c.logger.WithFields(ctx, merged)
	c.logger.Info(logCtx, "rapyd."+operation)
}
