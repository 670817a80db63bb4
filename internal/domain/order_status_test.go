package domain_test

import (
	"testing"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from domain.OrderStatus
		to   domain.OrderStatus
		want bool
	}{
		{domain.OrderStatusCreated, domain.OrderStatusCompleted, true},
		{domain.OrderStatusCreated, domain.OrderStatusFailed, true},
		{domain.OrderStatusFailed, domain.OrderStatusCompleted, true},
		{domain.OrderStatusFailed, domain.OrderStatusFailed, true},
		{domain.OrderStatusCompleted, domain.OrderStatusCompleted, true},
		{domain.OrderStatusCompleted, domain.OrderStatusFailed, false},
		{domain.OrderStatusCompleted, domain.OrderStatusCreated, false},
		{domain.OrderStatusFailed, domain.OrderStatusCreated, false},
		{domain.OrderStatusCreated, domain.OrderStatusCreated, false},
		{domain.OrderStatusCreated, domain.OrderStatusApproved, false},
		{domain.OrderStatusCreated, domain.OrderStatusRefunded, false},
		{domain.OrderStatusCompleted, domain.OrderStatusRefunded, false},
		{domain.OrderStatusApproved, domain.OrderStatusCompleted, false},
		{domain.OrderStatusRefunded, domain.OrderStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))

			err := domain.ValidateTransition(tt.from, tt.to)
			if tt.want {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}
}

// APPROVED and REFUNDED are reserved. If this fails, a code path started producing them.
func TestReservedStatusesUnreachable(t *testing.T) {
	for _, status := range domain.OrderStatuses() {
		switch status {
		case domain.OrderStatusApproved, domain.OrderStatusRefunded:
			assert.False(t, status.Reachable(), "status %s must stay unreachable", status)
		default:
			assert.True(t, status.Reachable(), "status %s must be reachable", status)
		}
	}
}

func TestToOrderStatus(t *testing.T) {
	for _, status := range domain.OrderStatuses() {
		parsed, err := domain.ToOrderStatus(string(status))
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := domain.ToOrderStatus("bogus")
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "status", validationErr.Field)
}
