package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

// SessionStore estado de sesión por token opaco con expiración (Redis o memoria).
type SessionStore interface {
	Save(ctx context.Context, s *entity.Session, ttl time.Duration) error
	// Get devuelve nil, nil si el token no existe o expiró.
	Get(ctx context.Context, token string) (*entity.Session, error)
	Delete(ctx context.Context, token string) error
}

// SessionUseCase ubicación elegida, carrito y orden pendiente guardados del lado del servidor.
type SessionUseCase struct {
	store     SessionStore
	locations repository.LocationRepository
	products  repository.ProductRepository
	ttl       time.Duration
}

// NewSessionUseCase construye el caso de uso. Cada acceso renueva la expiración.
func NewSessionUseCase(store SessionStore, locations repository.LocationRepository, products repository.ProductRepository, ttl time.Duration) *SessionUseCase {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionUseCase{store: store, locations: locations, products: products, ttl: ttl}
}

// Open crea una sesión vacía para el usuario.
func (uc *SessionUseCase) Open(ctx context.Context, a Actor) (*dto.SessionResponse, error) {
	s := &entity.Session{
		Token:  uuid.New().String(),
		UserID: a.UserID,
		Cart:   []entity.CartLine{},
	}
	return uc.save(ctx, s)
}

// Get devuelve la sesión si pertenece al usuario.
func (uc *SessionUseCase) Get(ctx context.Context, a Actor, token string) (*dto.SessionResponse, error) {
	s, err := uc.load(ctx, a, token)
	if err != nil {
		return nil, err
	}
	return uc.save(ctx, s)
}

// SelectLocation fija el punto de venta; cambiarlo vacía el carrito.
func (uc *SessionUseCase) SelectLocation(ctx context.Context, a Actor, token, locationID string) (*dto.SessionResponse, error) {
	s, err := uc.load(ctx, a, token)
	if err != nil {
		return nil, err
	}
	loc, err := uc.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	if s.SelectedLocationID != locationID {
		s.Cart = []entity.CartLine{}
	}
	s.SelectedLocationID = locationID
	return uc.save(ctx, s)
}

// SetCart reemplaza el carrito. Todos los productos deben ser del punto de venta elegido.
func (uc *SessionUseCase) SetCart(ctx context.Context, a Actor, token string, items []dto.OrderLineRequest) (*dto.SessionResponse, error) {
	s, err := uc.load(ctx, a, token)
	if err != nil {
		return nil, err
	}
	if s.SelectedLocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	cart := make([]entity.CartLine, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.LocationID != s.SelectedLocationID {
			return nil, domain.ErrNotFound
		}
		cart = append(cart, entity.CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	s.Cart = cart
	return uc.save(ctx, s)
}

// SetPendingOrder recuerda la última orden creada y vacía el carrito.
func (uc *SessionUseCase) SetPendingOrder(ctx context.Context, a Actor, token, orderID string) (*dto.SessionResponse, error) {
	s, err := uc.load(ctx, a, token)
	if err != nil {
		return nil, err
	}
	s.PendingOrderID = orderID
	s.Cart = []entity.CartLine{}
	return uc.save(ctx, s)
}

// Close elimina la sesión.
func (uc *SessionUseCase) Close(ctx context.Context, a Actor, token string) error {
	if _, err := uc.load(ctx, a, token); err != nil {
		return err
	}
	return uc.store.Delete(ctx, token)
}

func (uc *SessionUseCase) load(ctx context.Context, a Actor, token string) (*entity.Session, error) {
	if token == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.UserID != a.UserID {
		return nil, domain.ErrForbidden
	}
	return s, nil
}

func (uc *SessionUseCase) save(ctx context.Context, s *entity.Session) (*dto.SessionResponse, error) {
	s.ExpiresAt = time.Now().Add(uc.ttl)
	if err := uc.store.Save(ctx, s, uc.ttl); err != nil {
		return nil, err
	}
	return toSessionResponse(s), nil
}

func toSessionResponse(s *entity.Session) *dto.SessionResponse {
	cart := make([]dto.OrderLineRequest, 0, len(s.Cart))
	for _, l := range s.Cart {
		cart = append(cart, dto.OrderLineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return &dto.SessionResponse{
		Token:              s.Token,
		SelectedLocationID: s.SelectedLocationID,
		Cart:               cart,
		PendingOrderID:     s.PendingOrderID,
		ExpiresAt:          s.ExpiresAt,
	}
}
