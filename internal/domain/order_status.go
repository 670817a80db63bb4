package domain

import (
	"fmt"
)

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusCreated:   {},
	OrderStatusApproved:  {},
	OrderStatusCompleted: {},
	OrderStatusFailed:    {},
	OrderStatusRefunded:  {},
}

// APPROVED and REFUNDED have no inbound edge: nothing in the capture flow produces them.
// COMPLETED -> COMPLETED covers a repeated capture, which re-applies the provider's answer.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:   {OrderStatusCompleted, OrderStatusFailed},
	OrderStatusFailed:    {OrderStatusCompleted, OrderStatusFailed},
	OrderStatusCompleted: {OrderStatusCompleted},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", NewValidationError("status", fmt.Sprintf("invalid order status[%s]", s))
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reachable reports whether any transition leads into s.
func (s OrderStatus) Reachable() bool {
	if s == OrderStatusCreated {
		return true
	}

	for _, targets := range orderStatusTransitions {
		for _, target := range targets {
			if target == s {
				return true
			}
		}
	}
	return false
}

func ValidateTransition(from, to OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}
