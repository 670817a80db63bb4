package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// fixed width keeps lexical order equal to time order
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000"

const orderColumns = `id, provider_order_id, status, total_amount, currency, customer_name, customer_email, customer_phone, customer_address, payer_id, payer_email, capture_id, created_at, updated_at, completed_at`

const (
	sqliteInsertOrder = `INSERT INTO orders (provider_order_id, status, total_amount, currency,
                    customer_name, customer_email, customer_phone, customer_address, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqliteInsertOrderItem = `INSERT INTO order_items (order_id, product_name, product_sku, quantity, unit_price, total_price)
VALUES (?, ?, ?, ?, ?, ?)`

	sqliteGetOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	sqliteGetOrderByProviderID = `SELECT ` + orderColumns + ` FROM orders WHERE provider_order_id = ?`

	sqliteGetOrderItems = `SELECT id, product_name, product_sku, quantity, unit_price, total_price
FROM order_items WHERE order_id = ? ORDER BY id`

	sqliteListOrders = `SELECT ` + orderColumns + ` FROM orders
WHERE (? IS NULL OR status = ?)
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`

	sqliteCountOrders = `SELECT count(*) FROM orders WHERE (? IS NULL OR status = ?)`

	sqliteUpdateOrderStatus = `UPDATE orders
SET status       = ?,
    payer_id     = COALESCE(?, payer_id),
    payer_email  = COALESCE(?, payer_email),
    capture_id   = COALESCE(?, capture_id),
    completed_at = COALESCE(?, completed_at),
    updated_at   = ?
WHERE id = ?`

	sqliteDeleteOrder = `DELETE FROM orders WHERE id = ?`
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqliteOrderRepository is the embedded development store.
// The *sql.DB must come from OpenSQLite: a single connection with immediate
// transactions, which serialises writers the way row locks do in Postgres.
type sqliteOrderRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteOrder(db *sql.DB) (port.OrderRepository, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}

	return &sqliteOrderRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *sqliteOrderRepository) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	order, err := r.withTx(ctx, func(tx *sql.Tx) (domain.Order, error) {
		return r.getOrder(ctx, tx, sqliteGetOrder, orderID)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *sqliteOrderRepository) GetOrderByProviderID(ctx context.Context, providerOrderID string) (domain.Order, error) {
	if providerOrderID == "" {
		return domain.Order{}, errors.New("providerOrderID is empty")
	}

	order, err := r.withTx(ctx, func(tx *sql.Tx) (domain.Order, error) {
		return r.getOrder(ctx, tx, sqliteGetOrderByProviderID, providerOrderID)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *sqliteOrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	filter = filter.Clamped()
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	status := statusPtr(filter.Status)

	rows, err := r.db.QueryContext(ctx, sqliteListOrders, status, status, filter.Limit, filter.Skip)
	if err != nil {
		return nil, fmt.Errorf("db.QueryContext: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrder: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return orders, nil
}

func (r *sqliteOrderRepository) CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	status := statusPtr(filter.Status)

	var count int64
	if err := r.db.QueryRowContext(ctx, sqliteCountOrders, status, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("db.QueryRowContext: %w", err)
	}

	return count, nil
}

func (r *sqliteOrderRepository) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := validateNewOrder(order); err != nil {
		return domain.Order{}, err
	}

	if order.Status == "" {
		order.Status = domain.OrderStatusCreated
	}

	inserted, err := r.withTx(ctx, func(tx *sql.Tx) (domain.Order, error) {
		now := formatSQLiteTime(r.now())

		res, err := tx.ExecContext(ctx, sqliteInsertOrder,
			order.ProviderOrderID,
			string(order.Status),
			order.Total.Amount,
			order.Total.Currency.String(),
			lo.EmptyableToPtr(order.Customer.Name),
			lo.EmptyableToPtr(order.Customer.Email),
			lo.EmptyableToPtr(order.Customer.Phone),
			lo.EmptyableToPtr(order.Customer.Address),
			now,
			now,
		)
		if err != nil {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
				return domain.Order{}, fmt.Errorf("tx.ExecContext: %w", domain.ErrDuplicateOrder)
			}
			return domain.Order{}, fmt.Errorf("tx.ExecContext: %w", err)
		}

		orderID, err := res.LastInsertId()
		if err != nil {
			return domain.Order{}, fmt.Errorf("res.LastInsertId: %w", err)
		}

		for _, item := range order.Items {
			if _, err := tx.ExecContext(ctx, sqliteInsertOrderItem,
				orderID,
				item.ProductName,
				lo.EmptyableToPtr(item.ProductSKU),
				item.Quantity,
				item.UnitPrice,
				item.TotalPrice,
			); err != nil {
				return domain.Order{}, fmt.Errorf("tx.ExecContext: %w", err)
			}
		}

		return r.getOrder(ctx, tx, sqliteGetOrder, orderID)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return inserted, nil
}

func (r *sqliteOrderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, update domain.StatusUpdate) (domain.Order, error) {
	if orderID == 0 {
		return domain.Order{}, errors.New("orderID is empty")
	}
	if update.Status == "" {
		return domain.Order{}, errors.New("status is empty")
	}

	order, err := r.withTx(ctx, func(tx *sql.Tx) (domain.Order, error) {
		current, err := r.getOrder(ctx, tx, sqliteGetOrder, orderID)
		if err != nil {
			return domain.Order{}, err
		}

		if err := domain.ValidateTransition(current.Status, update.Status); err != nil {
			return domain.Order{}, fmt.Errorf("domain.ValidateTransition: %w", err)
		}

		var completedAt *string
		if update.CompletedAt != nil {
			completedAt = lo.ToPtr(formatSQLiteTime(*update.CompletedAt))
		}

		if _, err := tx.ExecContext(ctx, sqliteUpdateOrderStatus,
			string(update.Status),
			lo.EmptyableToPtr(update.PayerID),
			lo.EmptyableToPtr(update.PayerEmail),
			lo.EmptyableToPtr(update.CaptureID),
			completedAt,
			formatSQLiteTime(r.now()),
			orderID,
		); err != nil {
			return domain.Order{}, fmt.Errorf("tx.ExecContext: %w", err)
		}

		return r.getOrder(ctx, tx, sqliteGetOrder, orderID)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *sqliteOrderRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	if orderID == 0 {
		return errors.New("orderID is empty")
	}

	res, err := r.db.ExecContext(ctx, sqliteDeleteOrder, orderID)
	if err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("res.RowsAffected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("db.ExecContext: %w", domain.ErrOrderNotFound)
	}

	return nil
}

func (r *sqliteOrderRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) (domain.Order, error)) (_ domain.Order, txErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("db.BeginTx: %w", err)
	}

	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback()
			if rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	result, err := fn(tx)
	if err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("tx.Commit: %w", err)
	}

	return result, nil
}

func (r *sqliteOrderRepository) getOrder(ctx context.Context, q queryer, query string, key any) (domain.Order, error) {
	order, err := scanOrder(q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, fmt.Errorf("scanOrder: %w", domain.ErrOrderNotFound)
		}
		return domain.Order{}, fmt.Errorf("scanOrder: %w", err)
	}

	items, err := getSQLiteOrderItems(ctx, q, order.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("getSQLiteOrderItems: %w", err)
	}
	order.Items = items

	return order, nil
}

func getSQLiteOrderItems(ctx context.Context, q queryer, orderID int64) ([]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx, sqliteGetOrderItems, orderID)
	if err != nil {
		return nil, fmt.Errorf("QueryContext: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item domain.OrderItem
			sku  *string
		)
		if err := rows.Scan(&item.ID, &item.ProductName, &sku, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		item.ProductSKU = lo.FromPtr(sku)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o           domain.Order
		status      string
		amount      decimal.Decimal
		currencyISO string

		customerName, customerEmail, customerPhone, customerAddress *string
		payerID, payerEmail, captureID                              *string

		createdAt, updatedAt string
		completedAt          *string
	)

	if err := row.Scan(
		&o.ID,
		&o.ProviderOrderID,
		&status,
		&amount,
		&currencyISO,
		&customerName,
		&customerEmail,
		&customerPhone,
		&customerAddress,
		&payerID,
		&payerEmail,
		&captureID,
		&createdAt,
		&updatedAt,
		&completedAt,
	); err != nil {
		return o, err
	}

	parsedCurrency, err := currency.ParseISO(currencyISO)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", currencyISO, err)
	}

	o.Status, err = domain.ToOrderStatus(status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}

	if o.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return o, fmt.Errorf("parseSQLiteTime[created_at]: %w", err)
	}
	if o.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return o, fmt.Errorf("parseSQLiteTime[updated_at]: %w", err)
	}
	if completedAt != nil {
		t, err := parseSQLiteTime(*completedAt)
		if err != nil {
			return o, fmt.Errorf("parseSQLiteTime[completed_at]: %w", err)
		}
		o.CompletedAt = &t
	}

	o.Total = domain.Money{Amount: amount, Currency: parsedCurrency}
	o.Customer = domain.Customer{
		Name:    lo.FromPtr(customerName),
		Email:   lo.FromPtr(customerEmail),
		Phone:   lo.FromPtr(customerPhone),
		Address: lo.FromPtr(customerAddress),
	}
	o.PayerID = lo.FromPtr(payerID)
	o.PayerEmail = lo.FromPtr(payerEmail)
	o.CaptureID = lo.FromPtr(captureID)

	return o, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	return time.ParseInLocation(sqliteTimeLayout, s, time.UTC)
}
