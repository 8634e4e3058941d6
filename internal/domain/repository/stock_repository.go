package repository

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// StockRepository define el puerto para leer y escribir el stock de productos.
// Se usa solo dentro de una transacción del libro de stock (TxRunner).
type StockRepository interface {
	// GetForUpdate bloquea y devuelve los productos indicados del punto de venta,
	// en orden de ID para evitar interbloqueos. Los IDs inexistentes se omiten.
	GetForUpdate(ctx context.Context, locationID string, productIDs []string) ([]*entity.Product, error)
	// SetStock escribe el nuevo stock si la versión sigue siendo expectedVersion (compare-and-swap).
	// Devuelve domain.ErrConflict si otra escritura ganó.
	SetStock(ctx context.Context, productID string, stock int, expectedVersion int64) error
}
