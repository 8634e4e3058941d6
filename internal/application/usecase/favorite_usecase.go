package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
)

// Notifier reparte avisos (notification.Dispatcher).
type Notifier interface {
	FanOut(ctx context.Context, ev notification.Event) ([]string, error)
}

// FavoriteUseCase favoritos de clientes.
type FavoriteUseCase struct {
	repo     repository.FavoriteRepository
	products repository.ProductRepository
	notifier Notifier
	log      zerolog.Logger
}

// NewFavoriteUseCase construye el caso de uso.
func NewFavoriteUseCase(repo repository.FavoriteRepository, products repository.ProductRepository, notifier Notifier, log zerolog.Logger) *FavoriteUseCase {
	return &FavoriteUseCase{repo: repo, products: products, notifier: notifier, log: log}
}

// Add guarda el producto como favorito con una copia de sus datos y avisa al punto de venta.
func (uc *FavoriteUseCase) Add(ctx context.Context, a Actor, productID string) (*dto.FavoriteResponse, error) {
	if err := requireFeature(a, role.FeatureFavoritesWrite); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	fav := &entity.Favorite{
		UserEmail:  a.Email,
		ProductID:  p.ID,
		LocationID: p.LocationID,
		Snapshot:   entity.ProductSnapshot{Name: p.Name, Category: p.Category, Price: p.Price},
		CreatedAt:  time.Now(),
	}
	if err := uc.repo.Upsert(ctx, fav); err != nil {
		return nil, err
	}
	if _, err := uc.notifier.FanOut(ctx, notification.Event{
		Type:       entity.NotificationFavoriteProduct,
		LocationID: p.LocationID,
		ProductID:  p.ID,
		Message:    fmt.Sprintf("%s fue marcado como favorito", p.Name),
	}); err != nil {
		uc.log.Warn().Err(err).Str("product_id", p.ID).Msg("aviso de favorito no registrado")
	}
	return toFavoriteResponse(fav), nil
}

// Remove quita un favorito del cliente.
func (uc *FavoriteUseCase) Remove(ctx context.Context, a Actor, productID string) error {
	if err := requireFeature(a, role.FeatureFavoritesWrite); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, a.Email, productID)
}

// List favoritos del usuario.
func (uc *FavoriteUseCase) List(ctx context.Context, a Actor) ([]dto.FavoriteResponse, error) {
	if err := requireFeature(a, role.FeatureFavoritesRead); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByUser(ctx, a.Email)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FavoriteResponse, 0, len(list))
	for _, f := range list {
		out = append(out, *toFavoriteResponse(f))
	}
	return out, nil
}

func toFavoriteResponse(f *entity.Favorite) *dto.FavoriteResponse {
	return &dto.FavoriteResponse{
		ProductID:  f.ProductID,
		LocationID: f.LocationID,
		Name:       f.Snapshot.Name,
		Category:   f.Snapshot.Category,
		Price:      f.Snapshot.Price,
		CreatedAt:  f.CreatedAt,
	}
}
