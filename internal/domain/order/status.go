// Package order define el ciclo de vida de una orden (máquina de estados).
package order

import (
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// transitions sucesores legales de cada estado. Los estados terminales no tienen sucesores.
// Confirmed → Ready for pickup se permite para productos que no requieren preparación.
var transitions = map[string][]string{
	entity.OrderStatusConfirmed: {
		entity.OrderStatusInPreparation,
		entity.OrderStatusReadyForPickup,
		entity.OrderStatusCancelled,
	},
	entity.OrderStatusInPreparation: {
		entity.OrderStatusReadyForPickup,
		entity.OrderStatusCancelled,
	},
	entity.OrderStatusReadyForPickup: {
		entity.OrderStatusCompleted,
	},
	entity.OrderStatusCompleted: nil,
	entity.OrderStatusCancelled: nil,
}

// IsKnown indica si el estado pertenece al ciclo de vida.
func IsKnown(status string) bool {
	_, ok := transitions[status]
	return ok
}

// IsTerminal Completed y Cancelled no admiten más transiciones.
func IsTerminal(status string) bool {
	return status == entity.OrderStatusCompleted || status == entity.OrderStatusCancelled
}

// CanTransition indica si to es un sucesor legal de from. El mismo estado nunca es legal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition devuelve *domain.TransitionError si la transición no está en la tabla.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return &domain.TransitionError{From: from, To: to}
	}
	return nil
}

// Successors sucesores legales de un estado (copia).
func Successors(status string) []string {
	return append([]string(nil), transitions[status]...)
}

// AllStatuses estados en orden de avance.
func AllStatuses() []string {
	return []string{
		entity.OrderStatusConfirmed,
		entity.OrderStatusInPreparation,
		entity.OrderStatusReadyForPickup,
		entity.OrderStatusCompleted,
		entity.OrderStatusCancelled,
	}
}
