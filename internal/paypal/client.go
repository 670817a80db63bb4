package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultTimeout = 15 * time.Second

	tokenPath  = "/v1/oauth2/token"
	ordersPath = "/v2/checkout/orders"

	// provider error bodies are small, anything beyond is truncated
	maxBodySize = 1 << 20
)

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

// Client talks to the PayPal Orders v2 API. A call is attempted once, with no retries.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

var _ port.PaymentGateway = (*Client)(nil)

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is empty")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	oauthCfg := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// token requests are issued outside the caller's context, bound them separately
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})

	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: oauthCfg.Client(tokenCtx),
		logger:     logger,
	}, nil
}

func (c *Client) CreateOrder(ctx context.Context, amount domain.Money) (domain.ProviderOrder, error) {
	var result domain.ProviderOrder

	req := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitRequest{{
			Amount: amountRequest{
				CurrencyCode: amount.Currency.String(),
				Value:        amount.Value(),
			},
		}},
	}

	var resp orderResponse
	if err := c.do(ctx, "create order", ordersPath, req, &resp); err != nil {
		return result, err
	}

	if resp.ID == "" {
		return result, &domain.GatewayError{Op: "create order", Err: errors.New("response has no order id")}
	}

	return domain.ProviderOrder{
		ProviderOrderID: resp.ID,
		Status:          resp.Status,
	}, nil
}

// CaptureOrder captures an approved order. A 2xx answer with a status other than COMPLETED
// is reported as a GatewayError: the funds were not captured.
func (c *Client) CaptureOrder(ctx context.Context, providerOrderID string) (domain.CaptureResult, error) {
	var result domain.CaptureResult

	if providerOrderID == "" {
		return result, &domain.GatewayError{Op: "capture order", Err: errors.New("provider order id is empty")}
	}

	path := ordersPath + "/" + url.PathEscape(providerOrderID) + "/capture"

	var resp orderResponse
	if err := c.do(ctx, "capture order", path, struct{}{}, &resp); err != nil {
		return result, err
	}

	if resp.Status != statusCompleted {
		return result, &domain.GatewayError{
			Op:  "capture order",
			Err: fmt.Errorf("order[%s] capture status[%s]", providerOrderID, resp.Status),
		}
	}

	return mapCaptureResult(providerOrderID, resp), nil
}

func (c *Client) do(ctx context.Context, op, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	logger := c.logger.With("method", op, "request_id", requestID)

	payload, err := json.Marshal(body)
	if err != nil {
		return &domain.GatewayError{Op: op, Err: fmt.Errorf("json.Marshal: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &domain.GatewayError{Op: op, Err: fmt.Errorf("http.NewRequestWithContext: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", "return=representation")
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("paypal request failed", "err", err)
		return &domain.GatewayError{Op: op, Err: fmt.Errorf("httpClient.Do: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &domain.GatewayError{Op: op, Err: fmt.Errorf("io.ReadAll: %w", err)}
	}

	logger.Debug("paypal response", "status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := decodeProviderError(resp.StatusCode, data)
		logger.Error("paypal rejected request", "err", perr)
		return &domain.GatewayError{Op: op, Err: perr}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &domain.GatewayError{Op: op, Err: fmt.Errorf("json.Unmarshal: %w", err)}
	}

	return nil
}
