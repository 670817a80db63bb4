package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

const pgUniqueViolation = "23505"

type orderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) (port.OrderRepository, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}

	return &orderRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	order, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Order, error) {
		dbOrder, err := q.GetOrder(ctx, orderID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.GetOrder: %w", mapNoRows(err))
		}

		return r.withItems(ctx, q, dbOrder)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetOrderByProviderID(ctx context.Context, providerOrderID string) (domain.Order, error) {
	if providerOrderID == "" {
		return domain.Order{}, errors.New("providerOrderID is empty")
	}

	order, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Order, error) {
		dbOrder, err := q.GetOrderByProviderID(ctx, providerOrderID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.GetOrderByProviderID: %w", mapNoRows(err))
		}

		return r.withItems(ctx, q, dbOrder)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	filter = filter.Clamped()
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	dbOrders, err := r.q.ListOrders(ctx, db.ListOrdersParams{
		Status: statusPtr(filter.Status),
		Limit:  int32(filter.Limit),
		Offset: int32(filter.Skip),
	})
	if err != nil {
		return nil, fmt.Errorf("q.ListOrders: %w", err)
	}

	orders := make([]domain.Order, 0, len(dbOrders))
	for _, dbOrder := range dbOrders {
		order, err := mapDBOrderToDomain(dbOrder, nil)
		if err != nil {
			return nil, fmt.Errorf("mapDBOrderToDomain: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (r *orderRepository) CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	count, err := r.q.CountOrders(ctx, statusPtr(filter.Status))
	if err != nil {
		return 0, fmt.Errorf("q.CountOrders: %w", err)
	}

	return count, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := validateNewOrder(order); err != nil {
		return domain.Order{}, err
	}

	if order.Status == "" {
		order.Status = domain.OrderStatusCreated
	}

	inserted, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Order, error) {
		dbOrder, err := q.InsertOrder(ctx, db.InsertOrderParams{
			ProviderOrderID: order.ProviderOrderID,
			Status:          string(order.Status),
			TotalAmount:     order.Total.Amount,
			Currency:        order.Total.Currency.String(),
			CustomerName:    lo.EmptyableToPtr(order.Customer.Name),
			CustomerEmail:   lo.EmptyableToPtr(order.Customer.Email),
			CustomerPhone:   lo.EmptyableToPtr(order.Customer.Phone),
			CustomerAddress: lo.EmptyableToPtr(order.Customer.Address),
		})
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return domain.Order{}, fmt.Errorf("q.InsertOrder: %w", domain.ErrDuplicateOrder)
			}
			return domain.Order{}, fmt.Errorf("q.InsertOrder: %w", err)
		}

		// TODO: batch item inserts with pgx.Batch once carts grow beyond a handful of lines
		for _, item := range order.Items {
			arg := db.InsertOrderItemParams{
				OrderID:     dbOrder.ID,
				ProductName: item.ProductName,
				ProductSku:  lo.EmptyableToPtr(item.ProductSKU),
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				TotalPrice:  item.TotalPrice,
			}
			if _, err := q.InsertOrderItem(ctx, arg); err != nil {
				return domain.Order{}, fmt.Errorf("q.InsertOrderItem: %w", err)
			}
		}

		return r.withItems(ctx, q, dbOrder)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return inserted, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, update domain.StatusUpdate) (domain.Order, error) {
	if orderID == 0 {
		return domain.Order{}, errors.New("orderID is empty")
	}
	if update.Status == "" {
		return domain.Order{}, errors.New("status is empty")
	}

	order, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Order, error) {
		// row lock serialises concurrent captures of the same order
		current, err := q.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.GetOrderForUpdate: %w", mapNoRows(err))
		}

		if err := domain.ValidateTransition(domain.OrderStatus(current.Status), update.Status); err != nil {
			return domain.Order{}, fmt.Errorf("domain.ValidateTransition: %w", err)
		}

		dbOrder, err := q.UpdateOrderStatus(ctx, db.UpdateOrderStatusParams{
			Status:      string(update.Status),
			PayerID:     lo.EmptyableToPtr(update.PayerID),
			PayerEmail:  lo.EmptyableToPtr(update.PayerEmail),
			CaptureID:   lo.EmptyableToPtr(update.CaptureID),
			CompletedAt: update.CompletedAt,
			ID:          orderID,
		})
		if err != nil {
			return domain.Order{}, fmt.Errorf("q.UpdateOrderStatus: %w", err)
		}

		return r.withItems(ctx, q, dbOrder)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	if orderID == 0 {
		return errors.New("orderID is empty")
	}

	// order_items rows go with the order, ON DELETE CASCADE
	cmdTag, err := r.q.DeleteOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("q.DeleteOrder: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.DeleteOrder: %w", domain.ErrOrderNotFound)
	}

	return nil
}

func (r *orderRepository) withItems(ctx context.Context, q *db.Queries, dbOrder db.Order) (domain.Order, error) {
	dbItems, err := q.GetOrderItems(ctx, dbOrder.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	order, err := mapDBOrderToDomain(dbOrder, dbItems)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapDBOrderToDomain: %w", err)
	}

	return order, nil
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	return err
}

func mapDBOrderToDomain(dbOrder db.Order, dbItems []db.OrderItem) (domain.Order, error) {
	var o domain.Order

	parsedCurrency, err := currency.ParseISO(dbOrder.Currency)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", dbOrder.Currency, err)
	}

	status, err := domain.ToOrderStatus(dbOrder.Status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", dbOrder.Status, err)
	}

	return domain.Order{
		ID:              dbOrder.ID,
		ProviderOrderID: dbOrder.ProviderOrderID,
		Status:          status,
		Total:           domain.Money{Amount: dbOrder.TotalAmount, Currency: parsedCurrency},
		Customer: domain.Customer{
			Name:    lo.FromPtr(dbOrder.CustomerName),
			Email:   lo.FromPtr(dbOrder.CustomerEmail),
			Phone:   lo.FromPtr(dbOrder.CustomerPhone),
			Address: lo.FromPtr(dbOrder.CustomerAddress),
		},
		Items:       mapDBOrderItemsToDomain(dbItems),
		PayerID:     lo.FromPtr(dbOrder.PayerID),
		PayerEmail:  lo.FromPtr(dbOrder.PayerEmail),
		CaptureID:   lo.FromPtr(dbOrder.CaptureID),
		CreatedAt:   dbOrder.CreatedAt.UTC(),
		UpdatedAt:   dbOrder.UpdatedAt.UTC(),
		CompletedAt: utcPtr(dbOrder.CompletedAt),
	}, nil
}

func mapDBOrderItemsToDomain(rows []db.OrderItem) []domain.OrderItem {
	if len(rows) == 0 {
		return nil
	}

	return lo.Map(rows, func(row db.OrderItem, _ int) domain.OrderItem {
		return domain.OrderItem{
			ID:          row.ID,
			ProductName: row.ProductName,
			ProductSKU:  lo.FromPtr(row.ProductSku),
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			TotalPrice:  row.TotalPrice,
		}
	})
}
