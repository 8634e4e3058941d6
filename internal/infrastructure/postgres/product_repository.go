package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, location_id, name, category, stock, price, version, created_at, updated_at`

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, location_id, name, category, stock, price, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.LocationID, product.Name, product.Category, product.Stock,
		product.Price, product.Version, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).Scan(
		&p.ID, &p.LocationID, &p.Name, &p.Category, &p.Stock, &p.Price, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, wrap("get product", err)
	}
	return &p, nil
}

// Update actualiza nombre, categoría y precio. Stock y version no se tocan aquí.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, category = $3, price = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, product.ID, product.Name, product.Category, product.Price, product.UpdatedAt)
	if err != nil {
		return wrap("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByLocation menú del punto de venta ordenado por categoría y nombre.
func (r *ProductRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE location_id = $1 ORDER BY category, name`
	return r.list(ctx, query, locationID)
}

// ListLowStock productos con stock <= threshold, menor stock primero.
func (r *ProductRepo) ListLowStock(ctx context.Context, locationID string, threshold int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE location_id = $1 AND stock <= $2
		ORDER BY stock, name`
	return r.list(ctx, query, locationID, threshold)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, wrap("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.LocationID, &p.Name, &p.Category, &p.Stock, &p.Price, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, wrap("scan product", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list products", err)
	}
	return list, nil
}
