package api

import (
	"time"

	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type createOrderRequest struct {
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
	Cart         []cartItem      `json:"cart"`
	CustomerInfo *customerInfo   `json:"customerInfo"`
}

type cartItem struct {
	Name     string           `json:"name"`
	SKU      *string          `json:"sku"`
	Quantity *int32           `json:"quantity"`
	Price    decimal.Decimal  `json:"price"`
	Total    *decimal.Decimal `json:"total"`
}

type customerInfo struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type captureOrderRequest struct {
	OrderID string `json:"orderID"`
}

type createOrderResponse struct {
	ID      string `json:"id"`
	OrderID string `json:"orderID"`
	Status  string `json:"status"`
}

type captureOrderResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"orderID"`
}

type orderResponse struct {
	ID               int64           `json:"id"`
	PayPalOrderID    string          `json:"paypal_order_id"`
	Status           string          `json:"status"`
	Total            decimal.Decimal `json:"total"`
	Currency         string          `json:"currency"`
	CustomerName     *string         `json:"customer_name"`
	CustomerEmail    *string         `json:"customer_email"`
	CustomerPhone    *string         `json:"customer_phone"`
	CustomerAddress  *string         `json:"customer_address"`
	PayPalPayerID    *string         `json:"paypal_payer_id"`
	PayPalPayerEmail *string         `json:"paypal_payer_email"`
	PayPalCaptureID  *string         `json:"paypal_capture_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	CompletedAt      *time.Time      `json:"completed_at"`
	Items            []itemResponse  `json:"items,omitempty"`
}

type itemResponse struct {
	ID          int64           `json:"id"`
	ProductName string          `json:"product_name"`
	ProductSKU  *string         `json:"product_sku"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type listOrdersResponse struct {
	Orders []orderResponse `json:"orders"`
	Count  int             `json:"count"`
	Total  int64           `json:"total"`
	Skip   int             `json:"skip"`
	Limit  int             `json:"limit"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (r createOrderRequest) toCheckout() checkout.CreateOrderRequest {
	return checkout.CreateOrderRequest{
		Total:    r.Total,
		Currency: r.Currency,
		Cart: lo.Map(r.Cart, func(item cartItem, _ int) checkout.CartItem {
			return checkout.CartItem{
				Name:     item.Name,
				SKU:      lo.FromPtr(item.SKU),
				Quantity: item.Quantity,
				Price:    item.Price,
				Total:    item.Total,
			}
		}),
		Customer: r.CustomerInfo.toDomain(),
	}
}

func (c *customerInfo) toDomain() domain.Customer {
	if c == nil {
		return domain.Customer{}
	}

	return domain.Customer{
		Name:    lo.FromPtr(c.Name),
		Email:   lo.FromPtr(c.Email),
		Phone:   lo.FromPtr(c.Phone),
		Address: lo.FromPtr(c.Address),
	}
}

func mapOrder(order domain.Order) orderResponse {
	return orderResponse{
		ID:               order.ID,
		PayPalOrderID:    order.ProviderOrderID,
		Status:           order.Status.String(),
		Total:            order.Total.Amount,
		Currency:         order.Total.Currency.String(),
		CustomerName:     lo.EmptyableToPtr(order.Customer.Name),
		CustomerEmail:    lo.EmptyableToPtr(order.Customer.Email),
		CustomerPhone:    lo.EmptyableToPtr(order.Customer.Phone),
		CustomerAddress:  lo.EmptyableToPtr(order.Customer.Address),
		PayPalPayerID:    lo.EmptyableToPtr(order.PayerID),
		PayPalPayerEmail: lo.EmptyableToPtr(order.PayerEmail),
		PayPalCaptureID:  lo.EmptyableToPtr(order.CaptureID),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		CompletedAt:      order.CompletedAt,
		Items:            lo.Map(order.Items, mapOrderItem),
	}
}

func mapOrderItem(item domain.OrderItem, _ int) itemResponse {
	return itemResponse{
		ID:          item.ID,
		ProductName: item.ProductName,
		ProductSKU:  lo.EmptyableToPtr(item.ProductSKU),
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TotalPrice:  item.TotalPrice,
	}
}
