package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              int64
	ProviderOrderID string
	Status          OrderStatus
	Total           Money
	Customer        Customer
	Items           []OrderItem

	// populated by the payment provider on capture
	PayerID    string
	PayerEmail string
	CaptureID  string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// OrderItem prices share the currency of the owning order.
type OrderItem struct {
	ID          int64
	ProductName string
	ProductSKU  string
	Quantity    int32
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// StatusUpdate carries the fields a status transition may set.
// Empty strings leave the stored values untouched.
type StatusUpdate struct {
	Status      OrderStatus
	PayerID     string
	PayerEmail  string
	CaptureID   string
	CompletedAt *time.Time
}

func (c Customer) Validate() error {
	if c.Email == "" {
		return nil
	}

	if err := ValidateEmail(c.Email); err != nil {
		return NewValidationError("customerInfo.email", err.Error())
	}

	return nil
}

func (i OrderItem) Validate() error {
	if i.ProductName == "" {
		return NewValidationError("cart.name", "product name is empty")
	}
	if i.Quantity < 1 {
		return NewValidationError("cart.quantity", "quantity must be positive")
	}
	if i.UnitPrice.IsNegative() {
		return NewValidationError("cart.price", "unit price is negative")
	}
	if i.TotalPrice.IsNegative() {
		return NewValidationError("cart.total", "line total is negative")
	}

	return nil
}
