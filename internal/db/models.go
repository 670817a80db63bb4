package db

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              int64
	ProviderOrderID string
	Status          string
	TotalAmount     decimal.Decimal
	Currency        string
	CustomerName    *string
	CustomerEmail   *string
	CustomerPhone   *string
	CustomerAddress *string
	PayerID         *string
	PayerEmail      *string
	CaptureID       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductName string
	ProductSku  *string
	Quantity    int32
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}
