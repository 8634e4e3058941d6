package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/order"
)

func TestCanTransition_TablaCompleta(t *testing.T) {
	legal := map[[2]string]bool{
		{entity.OrderStatusConfirmed, entity.OrderStatusInPreparation}:      true,
		{entity.OrderStatusConfirmed, entity.OrderStatusReadyForPickup}:     true,
		{entity.OrderStatusConfirmed, entity.OrderStatusCancelled}:          true,
		{entity.OrderStatusInPreparation, entity.OrderStatusReadyForPickup}: true,
		{entity.OrderStatusInPreparation, entity.OrderStatusCancelled}:      true,
		{entity.OrderStatusReadyForPickup, entity.OrderStatusCompleted}:     true,
	}
	for _, from := range order.AllStatuses() {
		for _, to := range order.AllStatuses() {
			want := legal[[2]string{from, to}]
			assert.Equal(t, want, order.CanTransition(from, to), "%s -> %s", from, to)

			err := order.ValidateTransition(from, to)
			if want {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", from, to)
			}
		}
	}
}

func TestCanTransition_NuncaVuelveAConfirmed(t *testing.T) {
	for _, from := range order.AllStatuses() {
		assert.False(t, order.CanTransition(from, entity.OrderStatusConfirmed), from)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, order.IsTerminal(entity.OrderStatusCompleted))
	assert.True(t, order.IsTerminal(entity.OrderStatusCancelled))
	assert.False(t, order.IsTerminal(entity.OrderStatusConfirmed))
	assert.Empty(t, order.Successors(entity.OrderStatusCompleted))
}

func TestValidateTransition_EstadoDesconocido(t *testing.T) {
	assert.False(t, order.IsKnown("Delivered"))
	assert.ErrorIs(t, order.ValidateTransition(entity.OrderStatusConfirmed, "Delivered"), domain.ErrInvalidTransition)
}
