package repository

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// CardRepository tarjetas guardadas de un cliente.
type CardRepository interface {
	Create(ctx context.Context, card *entity.Card) error
	GetByID(ctx context.Context, id string) (*entity.Card, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Card, error)
	Delete(ctx context.Context, id string) error
}
