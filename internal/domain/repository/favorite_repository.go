package repository

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// FavoriteRepository favoritos con clave (UserEmail, ProductID).
type FavoriteRepository interface {
	Upsert(ctx context.Context, fav *entity.Favorite) error
	Delete(ctx context.Context, userEmail, productID string) error
	ListByUser(ctx context.Context, userEmail string) ([]*entity.Favorite, error)
}
