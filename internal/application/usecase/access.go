package usecase

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
)

// Actor usuario autenticado que ejecuta el caso de uso.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

func requireFeature(a Actor, f role.Feature) error {
	if !role.IsFeatureAllowed(a.Role, f) {
		return domain.ErrForbidden
	}
	return nil
}

// requireAssigned exige que el actor sea operador asignado al punto de venta.
func requireAssigned(ctx context.Context, locations repository.LocationRepository, a Actor, locationID string) error {
	if a.Role != entity.RoleOperator {
		return domain.ErrForbidden
	}
	locs, err := locations.LocationsOf(ctx, a.Email)
	if err != nil {
		return err
	}
	for _, id := range locs {
		if id == locationID {
			return nil
		}
	}
	return domain.ErrForbidden
}
