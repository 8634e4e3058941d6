package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
)

// StockWriter reposición a través del libro de stock (inventory.Ledger).
type StockWriter interface {
	Restock(ctx context.Context, locationID, productID, actor string, quantity int) (*entity.Product, error)
	ListLowStock(ctx context.Context, locationID string) ([]*entity.Product, error)
}

// ProductUseCase inventario del operador. El stock nunca se escribe aquí directamente.
type ProductUseCase struct {
	repo      repository.ProductRepository
	locations repository.LocationRepository
	stock     StockWriter
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, locations repository.LocationRepository, stock StockWriter) *ProductUseCase {
	return &ProductUseCase{repo: repo, locations: locations, stock: stock}
}

// Create crea un producto con stock 0 y, si se indicó stock inicial, lo repone por el libro de stock.
func (uc *ProductUseCase) Create(ctx context.Context, a Actor, locationID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := requireFeature(a, role.FeatureInventoryManagement); err != nil {
		return nil, err
	}
	if err := requireAssigned(ctx, uc.locations, a, locationID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" || in.Price < 0 || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:         uuid.New().String(),
		LocationID: locationID,
		Name:       strings.TrimSpace(in.Name),
		Category:   in.Category,
		Price:      in.Price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	if in.Stock > 0 {
		updated, err := uc.stock.Restock(ctx, locationID, product.ID, a.Email, in.Stock)
		if err != nil {
			return nil, err
		}
		product = updated
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(p), nil
}

// Update edita nombre, categoría o precio.
func (uc *ProductUseCase) Update(ctx context.Context, a Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := requireFeature(a, role.FeatureInventoryManagement); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if err := requireAssigned(ctx, uc.locations, a, p.LocationID); err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, domain.ErrInvalidInput
		}
		p.Price = *in.Price
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// ListByLocation menú de un punto de venta (clientes y operadores).
func (uc *ProductUseCase) ListByLocation(ctx context.Context, locationID string) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return toProductResponses(list), nil
}

// Restock suma stock a un producto del punto de venta del operador.
func (uc *ProductUseCase) Restock(ctx context.Context, a Actor, id string, quantity int) (*dto.ProductResponse, error) {
	if err := requireFeature(a, role.FeatureInventoryManagement); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if err := requireAssigned(ctx, uc.locations, a, p.LocationID); err != nil {
		return nil, err
	}
	updated, err := uc.stock.Restock(ctx, p.LocationID, id, a.Email, quantity)
	if err != nil {
		return nil, err
	}
	return toProductResponse(updated), nil
}

// LowStock productos del punto de venta en o por debajo del umbral.
func (uc *ProductUseCase) LowStock(ctx context.Context, a Actor, locationID string) ([]dto.ProductResponse, error) {
	if err := requireAssigned(ctx, uc.locations, a, locationID); err != nil {
		return nil, err
	}
	list, err := uc.stock.ListLowStock(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return toProductResponses(list), nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:         p.ID,
		LocationID: p.LocationID,
		Name:       p.Name,
		Category:   p.Category,
		Stock:      p.Stock,
		Price:      p.Price,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out
}
