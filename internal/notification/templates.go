package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	confirmationTemplate = "confirmation.html"
	adminTemplate        = "admin.html"
)

type Engine struct {
	tmpl *template.Template
}

func NewEngine() (*Engine, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS: %w", err)
	}

	return &Engine{tmpl: tmpl}, nil
}

func (e *Engine) Render(name string, order domain.Order) (string, error) {
	var buf bytes.Buffer

	if err := e.tmpl.ExecuteTemplate(&buf, name, buildOrderView(order)); err != nil {
		return "", fmt.Errorf("tmpl.ExecuteTemplate[%s]: %w", name, err)
	}

	return buf.String(), nil
}

type orderView struct {
	ID              int64
	ProviderOrderID string
	Status          string
	Total           string
	Customer        domain.Customer
	Items           []itemView
}

type itemView struct {
	Name       string
	Quantity   int32
	UnitPrice  string
	TotalPrice string
}

// buildOrderView formats every amount with the order currency's scale.
func buildOrderView(order domain.Order) orderView {
	code := order.Total.Currency.String()
	scale := order.Total.Scale()

	return orderView{
		ID:              order.ID,
		ProviderOrderID: order.ProviderOrderID,
		Status:          order.Status.String(),
		Total:           order.Total.String(),
		Customer:        order.Customer,
		Items: lo.Map(order.Items, func(item domain.OrderItem, _ int) itemView {
			return itemView{
				Name:       item.ProductName,
				Quantity:   item.Quantity,
				UnitPrice:  code + " " + item.UnitPrice.StringFixedBank(scale),
				TotalPrice: code + " " + item.TotalPrice.StringFixedBank(scale),
			}
		}),
	}
}
