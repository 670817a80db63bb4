package paypal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
)

const statusCompleted = "COMPLETED"

type createOrderRequest struct {
	Intent        string                `json:"intent"`
	PurchaseUnits []purchaseUnitRequest `json:"purchase_units"`
}

type purchaseUnitRequest struct {
	Amount amountRequest `json:"amount"`
}

type amountRequest struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// orderResponse is the subset of the Orders v2 representation the service reads.
// Every nested object is optional.
type orderResponse struct {
	ID            string                 `json:"id"`
	Status        string                 `json:"status"`
	Payer         *payerResponse         `json:"payer"`
	PurchaseUnits []purchaseUnitResponse `json:"purchase_units"`
}

type payerResponse struct {
	PayerID      string `json:"payer_id"`
	EmailAddress string `json:"email_address"`
}

type purchaseUnitResponse struct {
	Payments *struct {
		Captures []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"captures"`
	} `json:"payments"`
}

func (r orderResponse) captureID() string {
	for _, unit := range r.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, capture := range unit.Payments.Captures {
			if capture.ID != "" {
				return capture.ID
			}
		}
	}
	return ""
}

func mapCaptureResult(providerOrderID string, r orderResponse) domain.CaptureResult {
	result := domain.CaptureResult{
		ProviderOrderID: lo.CoalesceOrEmpty(r.ID, providerOrderID),
		Status:          r.Status,
		CaptureID:       lo.EmptyableToPtr(r.captureID()),
	}

	if r.Payer != nil {
		result.PayerID = lo.EmptyableToPtr(r.Payer.PayerID)
		result.PayerEmail = lo.EmptyableToPtr(r.Payer.EmailAddress)
	}

	return result
}

// ProviderError is a non-2xx answer. It is logged, never shown to API clients.
type ProviderError struct {
	StatusCode int
	Name       string `json:"name"`
	Message    string `json:"message"`
	DebugID    string `json:"debug_id"`

	// oauth token endpoint shape
	OAuthError       string `json:"error"`
	OAuthDescription string `json:"error_description"`
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status[%d]", e.StatusCode)

	if name := lo.CoalesceOrEmpty(e.Name, e.OAuthError); name != "" {
		fmt.Fprintf(&b, " name[%s]", name)
	}
	if msg := lo.CoalesceOrEmpty(e.Message, e.OAuthDescription); msg != "" {
		fmt.Fprintf(&b, " message[%s]", msg)
	}
	if e.DebugID != "" {
		fmt.Fprintf(&b, " debug_id[%s]", e.DebugID)
	}

	return b.String()
}

func decodeProviderError(statusCode int, body []byte) *ProviderError {
	perr := &ProviderError{}
	// an undecodable body still yields the status code
	_ = json.Unmarshal(body, perr)
	perr.StatusCode = statusCode
	return perr
}
