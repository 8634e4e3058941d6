package repository

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Update no toca Stock ni Version: el stock solo cambia por el libro de stock.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	ListByLocation(ctx context.Context, locationID string) ([]*entity.Product, error)
	// ListLowStock productos del punto de venta con stock <= threshold, menor stock primero.
	ListLowStock(ctx context.Context, locationID string, threshold int) ([]*entity.Product, error)
}
