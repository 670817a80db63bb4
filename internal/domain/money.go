package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const DefaultCurrency = "EUR"

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, code string) (Money, error) {
	var m Money

	if amount.IsNegative() {
		return m, NewValidationError("total", "must be non-negative")
	}

	if code == "" {
		code = DefaultCurrency
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return m, NewValidationError("currency", "currency["+code+"] is not a recognized ISO code")
	}

	m = Money{Amount: amount, Currency: unit}

	// the stored amount must be exactly what the provider is charged
	if !amount.Equal(amount.Round(m.Scale())) {
		return Money{}, NewValidationError("total", "has more decimals than "+unit.String()+" allows")
	}

	return m, nil
}

// Scale is the number of minor-unit digits of the currency, e.g. 2 for EUR, 0 for JPY.
func (m Money) Scale() int32 {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return int32(scale)
}

// Value renders the amount with the currency's scale, as payment providers expect it.
func (m Money) Value() string {
	return m.Amount.StringFixedBank(m.Scale())
}

func (m Money) String() string {
	return m.Currency.String() + " " + m.Value()
}
