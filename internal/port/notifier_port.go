package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// Notifier never fails loudly: false means the message was not sent.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order domain.Order, customerEmail string) bool
	SendAdminNotification(ctx context.Context, order domain.Order) bool
}
