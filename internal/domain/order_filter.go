package domain

import (
	"strconv"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// OrderFilter selects a page of orders, newest first.
// Skip and Limit apply after the status filter and ordering.
type OrderFilter struct {
	Skip   int
	Limit  int
	Status *OrderStatus
}

func (f OrderFilter) Validate() error {
	if f.Skip < 0 {
		return NewValidationError("skip", "must be non-negative")
	}

	if f.Limit < 1 || f.Limit > MaxListLimit {
		return NewValidationError("limit", "must be between 1 and "+strconv.Itoa(MaxListLimit))
	}

	if f.Status != nil {
		if _, err := ToOrderStatus(string(*f.Status)); err != nil {
			return err
		}
	}

	return nil
}

// NewOrderFilter parses raw query values. Empty limit means DefaultListLimit,
// limits above MaxListLimit are clamped silently.
func NewOrderFilter(skip, limit, status string) (OrderFilter, error) {
	var f OrderFilter

	if skip != "" {
		v, err := strconv.Atoi(skip)
		if err != nil {
			return f, NewValidationError("skip", "must be an integer")
		}
		f.Skip = v
	}

	f.Limit = DefaultListLimit
	if limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil {
			return f, NewValidationError("limit", "must be an integer")
		}
		f.Limit = v
	}
	f = f.Clamped()

	if status != "" {
		s, err := ToOrderStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = &s
	}

	if err := f.Validate(); err != nil {
		return f, err
	}

	return f, nil
}

func (f OrderFilter) Clamped() OrderFilter {
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return f
}
