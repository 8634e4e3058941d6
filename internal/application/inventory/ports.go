package inventory

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad del lote completo de una reserva.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// LowStockEvent producto que quedó en o por debajo del umbral después de un descuento.
type LowStockEvent struct {
	LocationID  string
	ProductID   string
	ProductName string
	Stock       int
}

// EventSink consumidor de eventos de stock bajo (el despachador de notificaciones).
type EventSink interface {
	LowStock(ctx context.Context, ev LowStockEvent) error
}
