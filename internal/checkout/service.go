package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CartItem is a submitted cart line. Quantity defaults to 1, Total to Quantity x Price.
type CartItem struct {
	Name     string
	SKU      string
	Quantity *int32
	Price    decimal.Decimal
	Total    *decimal.Decimal
}

type CreateOrderRequest struct {
	Total    decimal.Decimal
	Currency string
	Cart     []CartItem
	Customer domain.Customer
}

type CreateOrderResult struct {
	OrderID         int64
	ProviderOrderID string
	Status          domain.OrderStatus
}

type CaptureOrderResult struct {
	ProviderOrderID string
	Status          string
}

type ListOrdersResult struct {
	Orders []domain.Order
	Total  int64
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service drives an order from creation through capture.
// No store transaction is held open across a gateway or notification call.
type Service struct {
	orders   port.OrderRepository
	gateway  port.PaymentGateway
	notifier port.Notifier
	catalog  port.ProductCatalog
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	orders port.OrderRepository,
	gateway port.PaymentGateway,
	notifier port.Notifier,
	catalog port.ProductCatalog,
	logger *slog.Logger,
	opts ...Option,
) (*Service, error) {
	if orders == nil {
		return nil, errors.New("orders is nil")
	}
	if gateway == nil {
		return nil, errors.New("gateway is nil")
	}
	if notifier == nil {
		return nil, errors.New("notifier is nil")
	}
	if catalog == nil {
		return nil, errors.New("catalog is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	s := &Service{
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		catalog:  catalog,
		logger:   logger,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResult, error) {
	var result CreateOrderResult

	total, err := domain.NewMoney(req.Total, req.Currency)
	if err != nil {
		return result, err
	}

	if err := req.Customer.Validate(); err != nil {
		return result, err
	}

	items, err := buildItems(req.Cart)
	if err != nil {
		return result, err
	}

	return s.createOrder(ctx, total, items, req.Customer)
}

// CreateProductOrder creates an order for a single unit of a catalog product.
func (s *Service) CreateProductOrder(ctx context.Context, productID int, customer domain.Customer) (CreateOrderResult, error) {
	var result CreateOrderResult

	product, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		return result, err
	}

	total, err := product.Money()
	if err != nil {
		return result, fmt.Errorf("product.Money: %w", err)
	}

	if err := customer.Validate(); err != nil {
		return result, err
	}

	return s.createOrder(ctx, total, []domain.OrderItem{product.OrderItem()}, customer)
}

func (s *Service) createOrder(ctx context.Context, total domain.Money, items []domain.OrderItem, customer domain.Customer) (CreateOrderResult, error) {
	var result CreateOrderResult
	logger := s.logger.With("method", "CreateOrder")

	created, err := s.gateway.CreateOrder(ctx, total)
	if err != nil {
		logger.Error("gateway.CreateOrder", "total", total.String(), "err", err)
		return result, asGatewayError("create order", err)
	}

	order, err := s.orders.InsertOrder(ctx, domain.Order{
		ProviderOrderID: created.ProviderOrderID,
		Status:          domain.OrderStatusCreated,
		Total:           total,
		Customer:        customer,
		Items:           items,
	})
	if err != nil {
		// the provider order exists without a local record
		logger.Error("orders.InsertOrder: orphaned provider order",
			"provider_order_id", created.ProviderOrderID, "err", err)
		return result, &domain.PersistenceError{Op: "insert order", Err: err}
	}

	logger.Info("order created", "order_id", order.ID, "provider_order_id", order.ProviderOrderID)

	return CreateOrderResult{
		OrderID:         order.ID,
		ProviderOrderID: order.ProviderOrderID,
		Status:          order.Status,
	}, nil
}

// CaptureOrder captures a provider order and records the outcome locally.
// A successful capture of an order unknown to the store is reported as success.
// Re-capturing a COMPLETED order calls the gateway again.
func (s *Service) CaptureOrder(ctx context.Context, providerOrderID string) (CaptureOrderResult, error) {
	var result CaptureOrderResult
	logger := s.logger.With("method", "CaptureOrder", "provider_order_id", providerOrderID)

	if providerOrderID == "" {
		return result, domain.NewValidationError("orderID", "is empty")
	}

	captured, captureErr := s.gateway.CaptureOrder(ctx, providerOrderID)

	order, found, err := s.findByProviderID(ctx, providerOrderID)
	if err != nil {
		if captureErr != nil {
			logger.Error("gateway.CaptureOrder", "err", captureErr)
			logger.Error("s.findByProviderID", "err", err)
			return result, asGatewayError("capture order", captureErr)
		}

		logger.Error("s.findByProviderID: captured order not recorded", "err", err)
		return result, &domain.PersistenceError{Op: "get order", Err: err}
	}

	if captureErr != nil {
		logger.Error("gateway.CaptureOrder", "err", captureErr)

		if found {
			s.markFailed(ctx, logger, order)
		}

		return result, asGatewayError("capture order", captureErr)
	}

	if !found {
		logger.Warn("captured order has no local record")
		return CaptureOrderResult{
			ProviderOrderID: providerOrderID,
			Status:          captured.Status,
		}, nil
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, order.ID, domain.StatusUpdate{
		Status:      domain.OrderStatusCompleted,
		PayerID:     lo.FromPtr(captured.PayerID),
		PayerEmail:  lo.FromPtr(captured.PayerEmail),
		CaptureID:   lo.FromPtr(captured.CaptureID),
		CompletedAt: lo.ToPtr(s.now().UTC()),
	})
	if err != nil {
		logger.Error("orders.UpdateOrderStatus: captured order not recorded", "order_id", order.ID, "err", err)
		return result, &domain.PersistenceError{Op: "update order status", Err: err}
	}

	logger.Info("order completed", "order_id", updated.ID)

	s.notify(ctx, updated)

	return CaptureOrderResult{
		ProviderOrderID: updated.ProviderOrderID,
		Status:          captured.Status,
	}, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.Order{}, &domain.NotFoundError{
				Resource: "order",
				ID:       fmt.Sprint(orderID),
				Err:      domain.ErrOrderNotFound,
			}
		}

		s.logger.Error("orders.GetOrder", "method", "GetOrder", "order_id", orderID, "err", err)
		return domain.Order{}, &domain.PersistenceError{Op: "get order", Err: err}
	}

	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) (ListOrdersResult, error) {
	var result ListOrdersResult

	filter = filter.Clamped()
	if err := filter.Validate(); err != nil {
		return result, err
	}

	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		s.logger.Error("orders.ListOrders", "method", "ListOrders", "err", err)
		return result, &domain.PersistenceError{Op: "list orders", Err: err}
	}

	total, err := s.orders.CountOrders(ctx, filter)
	if err != nil {
		s.logger.Error("orders.CountOrders", "method", "ListOrders", "err", err)
		return result, &domain.PersistenceError{Op: "count orders", Err: err}
	}

	return ListOrdersResult{
		Orders: orders,
		Total:  total,
	}, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, productID int) (domain.Product, error) {
	return s.catalog.FindProduct(ctx, productID)
}

func (s *Service) findByProviderID(ctx context.Context, providerOrderID string) (domain.Order, bool, error) {
	order, err := s.orders.GetOrderByProviderID(ctx, providerOrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.Order{}, false, nil
		}
		return domain.Order{}, false, err
	}

	return order, true, nil
}

// markFailed records a failed capture. A COMPLETED order stays COMPLETED.
func (s *Service) markFailed(ctx context.Context, logger *slog.Logger, order domain.Order) {
	_, err := s.orders.UpdateOrderStatus(ctx, order.ID, domain.StatusUpdate{Status: domain.OrderStatusFailed})
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		logger.Warn("order keeps its status after failed capture", "order_id", order.ID, "status", order.Status)
	case err != nil:
		logger.Error("orders.UpdateOrderStatus: failed capture not recorded", "order_id", order.ID, "err", err)
	default:
		logger.Info("order failed", "order_id", order.ID)
	}
}

// notify runs after the commit and never changes the capture outcome.
func (s *Service) notify(ctx context.Context, order domain.Order) {
	ctx = context.WithoutCancel(ctx)
	logger := s.logger.With("method", "notify", "order_id", order.ID)

	if order.Customer.Email != "" {
		if !s.notifier.SendOrderConfirmation(ctx, order, order.Customer.Email) {
			logger.Warn("order confirmation not sent")
		}
	}

	if !s.notifier.SendAdminNotification(ctx, order) {
		logger.Warn("admin notification not sent")
	}
}

func buildItems(cart []CartItem) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(cart))

	for idx, line := range cart {
		quantity := lo.FromPtrOr(line.Quantity, 1)

		item := domain.OrderItem{
			ProductName: line.Name,
			ProductSKU:  line.SKU,
			Quantity:    quantity,
			UnitPrice:   line.Price,
			TotalPrice:  lo.FromPtrOr(line.Total, line.Price.Mul(decimal.NewFromInt32(quantity))),
		}

		if err := item.Validate(); err != nil {
			var validationErr *domain.ValidationError
			if errors.As(err, &validationErr) {
				validationErr.Field = fmt.Sprintf("cart[%d].%s", idx, strings.TrimPrefix(validationErr.Field, "cart."))
			}
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

func asGatewayError(op string, err error) error {
	var gatewayErr *domain.GatewayError
	if errors.As(err, &gatewayErr) {
		return gatewayErr
	}
	return &domain.GatewayError{Op: op, Err: err}
}
