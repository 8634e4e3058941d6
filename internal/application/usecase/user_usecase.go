package usecase

import (
	"context"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

// UserUseCase perfil del usuario autenticado.
type UserUseCase struct {
	repo      repository.UserRepository
	locations repository.LocationRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, locations repository.LocationRepository) *UserUseCase {
	return &UserUseCase{repo: repo, locations: locations}
}

// Me devuelve el perfil del actor: saldo para clientes y puntos de venta asignados para operadores.
func (uc *UserUseCase) Me(ctx context.Context, a Actor) (*dto.ProfileResponse, error) {
	user, err := uc.repo.GetByID(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	out := &dto.ProfileResponse{UserResponse: *entityToUserResponse(user)}
	switch user.Role {
	case entity.RoleClient:
		bal := user.Balance
		out.Balance = &bal
	case entity.RoleOperator:
		locs, err := uc.locations.LocationsOf(ctx, user.Email)
		if err != nil {
			return nil, err
		}
		out.LocationIDs = locs
	}
	return out, nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
