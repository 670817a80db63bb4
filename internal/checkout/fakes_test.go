package checkout_test

import (
	"context"
	"slices"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type memoryOrders struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]domain.Order

	insertErr error
	updateErr error
}

var _ port.OrderRepository = (*memoryOrders)(nil)

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{orders: map[int64]domain.Order{}}
}

func (m *memoryOrders) GetOrder(_ context.Context, orderID int64) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (m *memoryOrders) GetOrderByProviderID(_ context.Context, providerOrderID string) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, order := range m.orders {
		if order.ProviderOrderID == providerOrderID {
			return order, nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

func (m *memoryOrders) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	matching := m.matching(filter)

	if filter.Skip >= len(matching) {
		return nil, nil
	}
	matching = matching[filter.Skip:]
	if len(matching) > filter.Limit {
		matching = matching[:filter.Limit]
	}
	return matching, nil
}

func (m *memoryOrders) CountOrders(_ context.Context, filter domain.OrderFilter) (int64, error) {
	return int64(len(m.matching(filter))), nil
}

func (m *memoryOrders) InsertOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return domain.Order{}, m.insertErr
	}

	m.nextID++
	order.ID = m.nextID
	m.orders[order.ID] = order

	return order, nil
}

func (m *memoryOrders) UpdateOrderStatus(_ context.Context, orderID int64, update domain.StatusUpdate) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return domain.Order{}, m.updateErr
	}

	order, ok := m.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	if err := domain.ValidateTransition(order.Status, update.Status); err != nil {
		return domain.Order{}, err
	}

	order.Status = update.Status
	if update.PayerID != "" {
		order.PayerID = update.PayerID
	}
	if update.PayerEmail != "" {
		order.PayerEmail = update.PayerEmail
	}
	if update.CaptureID != "" {
		order.CaptureID = update.CaptureID
	}
	if update.CompletedAt != nil {
		order.CompletedAt = update.CompletedAt
	}
	m.orders[orderID] = order

	return order, nil
}

func (m *memoryOrders) DeleteOrder(_ context.Context, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(m.orders, orderID)
	return nil
}

func (m *memoryOrders) all() []domain.Order {
	return m.matching(domain.OrderFilter{})
}

func (m *memoryOrders) matching(filter domain.OrderFilter) []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []domain.Order
	for _, order := range m.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		result = append(result, order)
	}

	slices.SortFunc(result, func(a, b domain.Order) int {
		return int(b.ID - a.ID)
	})
	return result
}

type fakeGateway struct {
	createOrder  func(ctx context.Context, amount domain.Money) (domain.ProviderOrder, error)
	captureOrder func(ctx context.Context, providerOrderID string) (domain.CaptureResult, error)

	mu       sync.Mutex
	creates  []domain.Money
	captures []string
}

var _ port.PaymentGateway = (*fakeGateway)(nil)

func (f *fakeGateway) CreateOrder(ctx context.Context, amount domain.Money) (domain.ProviderOrder, error) {
	f.mu.Lock()
	f.creates = append(f.creates, amount)
	f.mu.Unlock()

	return f.createOrder(ctx, amount)
}

func (f *fakeGateway) CaptureOrder(ctx context.Context, providerOrderID string) (domain.CaptureResult, error) {
	f.mu.Lock()
	f.captures = append(f.captures, providerOrderID)
	f.mu.Unlock()

	return f.captureOrder(ctx, providerOrderID)
}

type fakeNotifier struct {
	mu            sync.Mutex
	confirmations []string
	admin         []int64
	result        bool
}

var _ port.Notifier = (*fakeNotifier)(nil)

func (f *fakeNotifier) SendOrderConfirmation(_ context.Context, _ domain.Order, customerEmail string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.confirmations = append(f.confirmations, customerEmail)
	return f.result
}

func (f *fakeNotifier) SendAdminNotification(_ context.Context, order domain.Order) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.admin = append(f.admin, order.ID)
	return f.result
}
