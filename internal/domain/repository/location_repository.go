package repository

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

// LocationRepository puntos de venta y su asignación de operadores.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
	AssignOperator(ctx context.Context, assignment *entity.OperatorAssignment) error
	// OperatorsOf correos de los operadores asignados al punto de venta.
	OperatorsOf(ctx context.Context, locationID string) ([]string, error)
	// LocationsOf puntos de venta asignados a un operador.
	LocationsOf(ctx context.Context, operatorEmail string) ([]string, error)
}
