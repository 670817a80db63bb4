package domain

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	SKU         string          `json:"sku,omitempty" yaml:"sku"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Currency    string          `json:"currency" yaml:"currency"`
	Description string          `json:"description,omitempty" yaml:"description"`
	ImageURL    string          `json:"image_url,omitempty" yaml:"image_url"`
}

func (p Product) Money() (Money, error) {
	return NewMoney(p.Price, p.Currency)
}

// OrderItem returns a single-unit line for the product.
func (p Product) OrderItem() OrderItem {
	return OrderItem{
		ProductName: p.Name,
		ProductSKU:  p.SKU,
		Quantity:    1,
		UnitPrice:   p.Price,
		TotalPrice:  p.Price,
	}
}
