package repository

import (
	"context"
	"time"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// ListByUser órdenes del cliente, más recientes primero.
	ListByUser(ctx context.Context, userEmail string) ([]*entity.Order, error)
	// ListByLocation órdenes del punto de venta, más recientes primero; statuses vacío = todas.
	ListByLocation(ctx context.Context, locationID string, statuses []string) ([]*entity.Order, error)
	// UpdateStatus cambia el estado solo si el actual sigue siendo from; si no, domain.ErrConflict.
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) error
}
