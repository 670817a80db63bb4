package repository

import (
	"errors"
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"golang.org/x/text/currency"
	"time"
)

func validateNewOrder(order domain.Order) error {
	if order.ProviderOrderID == "" {
		return errors.New("providerOrderID is empty")
	}

	if order.Total.Amount.IsNegative() {
		return errors.New("total is negative")
	}

	if order.Total.Currency == (currency.Unit{}) {
		return errors.New("currency is empty")
	}

	for idx, item := range order.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item[%d]: %w", idx, err)
		}
	}

	return nil
}

func statusPtr(status *domain.OrderStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
