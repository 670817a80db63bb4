package paypal_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/paypal"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const accessToken = "test-token"

type clientSuite struct {
	suite.Suite

	mux    *http.ServeMux
	server *httptest.Server
	client *paypal.Client

	tokenCalls atomic.Int32
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(clientSuite))
}

func (suite *clientSuite) SetupTest() {
	suite.mux = http.NewServeMux()
	suite.tokenCalls.Store(0)

	suite.mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		suite.tokenCalls.Add(1)

		id, secret, ok := r.BasicAuth()
		if !ok || id != "client" || secret != "secret" {
			writeJSON(w, http.StatusUnauthorized, `{"error":"invalid_client","error_description":"Client Authentication failed"}`)
			return
		}

		writeJSON(w, http.StatusOK, `{"access_token":"`+accessToken+`","token_type":"Bearer","expires_in":32400}`)
	})

	suite.server = httptest.NewServer(suite.mux)
	suite.client = suite.newClient("secret", time.Second)
}

func (suite *clientSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *clientSuite) newClient(secret string, timeout time.Duration) *paypal.Client {
	client, err := paypal.New(paypal.Config{
		ClientID:     "client",
		ClientSecret: secret,
		BaseURL:      suite.server.URL,
		Timeout:      timeout,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	suite.Require().NoError(err)

	return client
}

func (suite *clientSuite) TestCreateOrder() {
	suite.mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("Bearer "+accessToken, r.Header.Get("Authorization"))
		suite.NotEmpty(r.Header.Get("X-Request-ID"))

		var body map[string]any
		suite.NoError(json.NewDecoder(r.Body).Decode(&body))
		suite.Equal("CAPTURE", body["intent"])

		units := body["purchase_units"].([]any)
		suite.Require().Len(units, 1)
		amount := units[0].(map[string]any)["amount"].(map[string]any)
		suite.Equal("EUR", amount["currency_code"])
		suite.Equal("29.99", amount["value"])

		writeJSON(w, http.StatusCreated, `{"id":"PP-1","status":"CREATED"}`)
	})

	result, err := suite.client.CreateOrder(suite.T().Context(), money(suite.T(), "29.99", "EUR"))
	suite.Require().NoError(err)

	suite.Equal(domain.ProviderOrder{ProviderOrderID: "PP-1", Status: "CREATED"}, result)
	suite.Equal(int32(1), suite.tokenCalls.Load())
}

func (suite *clientSuite) TestCreateOrderFormatsCurrencyScale() {
	var got atomic.Value

	suite.mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PurchaseUnits []struct {
				Amount struct {
					Value string `json:"value"`
				} `json:"amount"`
			} `json:"purchase_units"`
		}
		suite.NoError(json.NewDecoder(r.Body).Decode(&body))
		got.Store(body.PurchaseUnits[0].Amount.Value)

		writeJSON(w, http.StatusCreated, `{"id":"PP-2","status":"CREATED"}`)
	})

	_, err := suite.client.CreateOrder(suite.T().Context(), money(suite.T(), "1500", "JPY"))
	suite.Require().NoError(err)
	suite.Equal("1500", got.Load())

	_, err = suite.client.CreateOrder(suite.T().Context(), money(suite.T(), "10.5", "USD"))
	suite.Require().NoError(err)
	suite.Equal("10.50", got.Load())
}

func (suite *clientSuite) TestCreateOrderProviderError() {
	suite.mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity,
			`{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed","debug_id":"abc123"}`)
	})

	_, err := suite.client.CreateOrder(suite.T().Context(), money(suite.T(), "29.99", "EUR"))
	suite.Require().Error(err)

	var gatewayErr *domain.GatewayError
	suite.Require().ErrorAs(err, &gatewayErr)
	suite.Equal("create order", gatewayErr.Op)

	var providerErr *paypal.ProviderError
	suite.Require().ErrorAs(err, &providerErr)
	suite.Equal(http.StatusUnprocessableEntity, providerErr.StatusCode)
	suite.Equal("UNPROCESSABLE_ENTITY", providerErr.Name)
	suite.Equal("abc123", providerErr.DebugID)
}

func (suite *clientSuite) TestCreateOrderMissingID() {
	suite.mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, `{"status":"CREATED"}`)
	})

	_, err := suite.client.CreateOrder(suite.T().Context(), money(suite.T(), "29.99", "EUR"))

	var gatewayErr *domain.GatewayError
	suite.ErrorAs(err, &gatewayErr)
}

func (suite *clientSuite) TestCreateOrderUndecodableBody() {
	suite.mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, `<html>not json</html>`)
	})

	_, err := suite.client.CreateOrder(suite.T().Context(), money(suite.T(), "29.99", "EUR"))

	var gatewayErr *domain.GatewayError
	suite.ErrorAs(err, &gatewayErr)
}

func (suite *clientSuite) TestCreateOrderBadCredentials() {
	client := suite.newClient("wrong", time.Second)

	suite.mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, _ *http.Request) {
		suite.Fail("orders endpoint must not be called without a token")
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CreateOrder(suite.T().Context(), money(suite.T(), "29.99", "EUR"))

	var gatewayErr *domain.GatewayError
	suite.ErrorAs(err, &gatewayErr)
}

func (suite *clientSuite) TestCreateOrderDeadline() {
	client := suite.newClient("secret", 50*time.Millisecond)

	suite.mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		writeJSON(w, http.StatusCreated, `{"id":"PP-late","status":"CREATED"}`)
	})

	started := time.Now()
	_, err := client.CreateOrder(suite.T().Context(), money(suite.T(), "29.99", "EUR"))

	var gatewayErr *domain.GatewayError
	suite.Require().ErrorAs(err, &gatewayErr)
	suite.ErrorIs(err, context.DeadlineExceeded)
	suite.Less(time.Since(started), time.Second)
}

func (suite *clientSuite) TestCaptureOrder() {
	suite.mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("PP-1", r.PathValue("id"))
		suite.Equal("Bearer "+accessToken, r.Header.Get("Authorization"))

		writeJSON(w, http.StatusCreated, `{
			"id": "PP-1",
			"status": "COMPLETED",
			"payer": {"payer_id": "X", "email_address": "x@example.com"},
			"purchase_units": [{"payments": {"captures": [{"id": "CAP-1", "status": "COMPLETED"}]}}]
		}`)
	})

	result, err := suite.client.CaptureOrder(suite.T().Context(), "PP-1")
	suite.Require().NoError(err)

	suite.Equal(domain.CaptureResult{
		ProviderOrderID: "PP-1",
		Status:          "COMPLETED",
		PayerID:         lo.ToPtr("X"),
		PayerEmail:      lo.ToPtr("x@example.com"),
		CaptureID:       lo.ToPtr("CAP-1"),
	}, result)
}

func (suite *clientSuite) TestCaptureOrderOptionalFieldsAbsent() {
	tests := []struct {
		name string
		body string
		want domain.CaptureResult
	}{
		{
			name: "no payer no units",
			body: `{"id":"PP-1","status":"COMPLETED"}`,
			want: domain.CaptureResult{ProviderOrderID: "PP-1", Status: "COMPLETED"},
		},
		{
			name: "payer without email",
			body: `{"id":"PP-1","status":"COMPLETED","payer":{"payer_id":"X"}}`,
			want: domain.CaptureResult{ProviderOrderID: "PP-1", Status: "COMPLETED", PayerID: lo.ToPtr("X")},
		},
		{
			name: "unit without payments",
			body: `{"id":"PP-1","status":"COMPLETED","purchase_units":[{}]}`,
			want: domain.CaptureResult{ProviderOrderID: "PP-1", Status: "COMPLETED"},
		},
		{
			name: "empty captures",
			body: `{"status":"COMPLETED","purchase_units":[{"payments":{"captures":[]}}]}`,
			want: domain.CaptureResult{ProviderOrderID: "PP-1", Status: "COMPLETED"},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			mux := http.NewServeMux()
			mux.Handle("POST /v1/oauth2/token", suite.mux)
			mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusCreated, tt.body)
			})

			server := httptest.NewServer(mux)
			defer server.Close()

			client, err := paypal.New(paypal.Config{
				ClientID:     "client",
				ClientSecret: "secret",
				BaseURL:      server.URL,
				Timeout:      time.Second,
			}, slog.New(slog.NewTextHandler(io.Discard, nil)))
			suite.Require().NoError(err)

			result, err := client.CaptureOrder(suite.T().Context(), "PP-1")
			suite.Require().NoError(err)
			suite.Equal(tt.want, result)
		})
	}
}

func (suite *clientSuite) TestCaptureOrderNotCompleted() {
	suite.mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, `{"id":"PP-1","status":"PAYER_ACTION_REQUIRED"}`)
	})

	_, err := suite.client.CaptureOrder(suite.T().Context(), "PP-1")

	var gatewayErr *domain.GatewayError
	suite.Require().ErrorAs(err, &gatewayErr)
	suite.Equal("capture order", gatewayErr.Op)
}

func (suite *clientSuite) TestCaptureOrderDeclined() {
	suite.mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"INSTRUMENT_DECLINED"}]}`)
	})

	_, err := suite.client.CaptureOrder(suite.T().Context(), "PP-1")

	var providerErr *paypal.ProviderError
	suite.Require().ErrorAs(err, &providerErr)
	suite.Equal(http.StatusUnprocessableEntity, providerErr.StatusCode)
}

func (suite *clientSuite) TestCaptureOrderEmptyID() {
	_, err := suite.client.CaptureOrder(suite.T().Context(), "")

	var gatewayErr *domain.GatewayError
	suite.ErrorAs(err, &gatewayErr)
	suite.Zero(suite.tokenCalls.Load())
}

func TestNewValidatesArgs(t *testing.T) {
	_, err := paypal.New(paypal.Config{}, slog.Default())
	require.EqualError(t, err, "base url is empty")

	_, err = paypal.New(paypal.Config{BaseURL: "https://api-m.sandbox.paypal.com"}, nil)
	require.EqualError(t, err, "logger is nil")
}

func money(t *testing.T, amount, code string) domain.Money {
	t.Helper()

	m, err := domain.NewMoney(decimal.RequireFromString(amount), code)
	require.NoError(t, err)

	return m
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
