package repository

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// AddBalance suma delta (puede ser negativo) y devuelve el saldo resultante.
	// Devuelve domain.ErrInsufficientFunds si el saldo quedaría negativo.
	AddBalance(ctx context.Context, userID string, delta int64) (int64, error)
}
