package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const countOrders = `-- name: CountOrders :one
SELECT count(*)
FROM orders
WHERE ($1::text IS NULL OR status = $1)
`

func (q *Queries) CountOrders(ctx context.Context, status *string) (int64, error) {
	row := q.db.QueryRow(ctx, countOrders, status)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteOrder = `-- name: DeleteOrder :execresult
DELETE
FROM orders
WHERE id = $1
`

func (q *Queries) DeleteOrder(ctx context.Context, id int64) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, deleteOrder, id)
}

const getOrder = `-- name: GetOrder :one
SELECT id, provider_order_id, status, total_amount, currency, customer_name, customer_email, customer_phone, customer_address, payer_id, payer_email, capture_id, created_at, updated_at, completed_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id int64) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.ProviderOrderID,
		&i.Status,
		&i.TotalAmount,
		&i.Currency,
		&i.CustomerName,
		&i.CustomerEmail,
		&i.CustomerPhone,
		&i.CustomerAddress,
		&i.PayerID,
		&i.PayerEmail,
		&i.CaptureID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}

const getOrderByProviderID = `-- name: GetOrderByProviderID :one
SELECT id, provider_order_id, status, total_amount, currency, customer_name, customer_email, customer_phone, customer_address, payer_id, payer_email, capture_id, created_at, updated_at, completed_at
FROM orders
WHERE provider_order_id = $1
`

func (q *Queries) GetOrderByProviderID(ctx context.Context, providerOrderID string) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderByProviderID, providerOrderID)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.ProviderOrderID,
		&i.Status,
		&i.TotalAmount,
		&i.Currency,
		&i.CustomerName,
		&i.CustomerEmail,
		&i.CustomerPhone,
		&i.CustomerAddress,
		&i.PayerID,
		&i.PayerEmail,
		&i.CaptureID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT id, provider_order_id, status, total_amount, currency, customer_name, customer_email, customer_phone, customer_address, payer_id, payer_email, capture_id, created_at, updated_at, completed_at
FROM orders
WHERE id = $1
    FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id int64) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForUpdate, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.ProviderOrderID,
		&i.Status,
		&i.TotalAmount,
		&i.Currency,
		&i.CustomerName,
		&i.CustomerEmail,
		&i.CustomerPhone,
		&i.CustomerAddress,
		&i.PayerID,
		&i.PayerEmail,
		&i.CaptureID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}

const getOrderItems = `-- name: GetOrderItems :many
SELECT id, order_id, product_name, product_sku, quantity, unit_price, total_price
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) GetOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductName,
			&i.ProductSku,
			&i.Quantity,
			&i.UnitPrice,
			&i.TotalPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertOrder = `-- name: InsertOrder :one
INSERT INTO orders (provider_order_id, status, total_amount, currency,
                    customer_name, customer_email, customer_phone, customer_address)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, provider_order_id, status, total_amount, currency, customer_name, customer_email, customer_phone, customer_address, payer_id, payer_email, capture_id, created_at, updated_at, completed_at
`

type InsertOrderParams struct {
	ProviderOrderID string
	Status          string
	TotalAmount     decimal.Decimal
	Currency        string
	CustomerName    *string
	CustomerEmail   *string
	CustomerPhone   *string
	CustomerAddress *string
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.ProviderOrderID,
		arg.Status,
		arg.TotalAmount,
		arg.Currency,
		arg.CustomerName,
		arg.CustomerEmail,
		arg.CustomerPhone,
		arg.CustomerAddress,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.ProviderOrderID,
		&i.Status,
		&i.TotalAmount,
		&i.Currency,
		&i.CustomerName,
		&i.CustomerEmail,
		&i.CustomerPhone,
		&i.CustomerAddress,
		&i.PayerID,
		&i.PayerEmail,
		&i.CaptureID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}

const insertOrderItem = `-- name: InsertOrderItem :one
INSERT INTO order_items (order_id, product_name, product_sku, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`

type InsertOrderItemParams struct {
	OrderID     int64
	ProductName string
	ProductSku  *string
	Quantity    int32
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertOrderItem,
		arg.OrderID,
		arg.ProductName,
		arg.ProductSku,
		arg.Quantity,
		arg.UnitPrice,
		arg.TotalPrice,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listOrders = `-- name: ListOrders :many
SELECT id, provider_order_id, status, total_amount, currency, customer_name, customer_email, customer_phone, customer_address, payer_id, payer_email, capture_id, created_at, updated_at, completed_at
FROM orders
WHERE ($1::text IS NULL OR status = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListOrdersParams struct {
	Status *string
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.ProviderOrderID,
			&i.Status,
			&i.TotalAmount,
			&i.Currency,
			&i.CustomerName,
			&i.CustomerEmail,
			&i.CustomerPhone,
			&i.CustomerAddress,
			&i.PayerID,
			&i.PayerEmail,
			&i.CaptureID,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.CompletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status       = $1,
    payer_id     = COALESCE($2, payer_id),
    payer_email  = COALESCE($3, payer_email),
    capture_id   = COALESCE($4, capture_id),
    completed_at = COALESCE($5, completed_at),
    updated_at   = now()
WHERE id = $6
RETURNING id, provider_order_id, status, total_amount, currency, customer_name, customer_email, customer_phone, customer_address, payer_id, payer_email, capture_id, created_at, updated_at, completed_at
`

type UpdateOrderStatusParams struct {
	Status      string
	PayerID     *string
	PayerEmail  *string
	CaptureID   *string
	CompletedAt *time.Time
	ID          int64
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus,
		arg.Status,
		arg.PayerID,
		arg.PayerEmail,
		arg.CaptureID,
		arg.CompletedAt,
		arg.ID,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.ProviderOrderID,
		&i.Status,
		&i.TotalAmount,
		&i.Currency,
		&i.CustomerName,
		&i.CustomerEmail,
		&i.CustomerPhone,
		&i.CustomerAddress,
		&i.PayerID,
		&i.PayerEmail,
		&i.CaptureID,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}
