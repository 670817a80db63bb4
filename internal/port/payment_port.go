package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// PaymentGateway is a pass-through to the payment provider, the provider's answer is authoritative.
// Every failure is a *domain.GatewayError.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount domain.Money) (domain.ProviderOrder, error)
	CaptureOrder(ctx context.Context, providerOrderID string) (domain.CaptureResult, error)
}
