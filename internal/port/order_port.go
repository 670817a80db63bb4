package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)
	GetOrderByProviderID(ctx context.Context, providerOrderID string) (domain.Order, error)

	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error)

	// InsertOrder writes the order and all of its items atomically.
	InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error)

	// UpdateOrderStatus locks the order row, checks the transition and applies the update.
	UpdateOrderStatus(ctx context.Context, orderID int64, update domain.StatusUpdate) (domain.Order, error)

	DeleteOrder(ctx context.Context, orderID int64) error
}
